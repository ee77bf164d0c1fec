package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/util"
)

func newPageMeta(total int64, page, limit int) *dto.PageMeta {
	return &dto.PageMeta{
		Total:       total,
		CurrentPage: page,
		Limit:       limit,
		TotalPages:  util.TotalPages(total, limit),
	}
}
