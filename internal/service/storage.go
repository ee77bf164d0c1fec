package service

import "Ripple/internal/pkg/minio"

// 对象存储操作的包级入口，测试中可替换
var (
	uploadFile = minio.UploadFile
	deleteFile = minio.DeleteFile
)
