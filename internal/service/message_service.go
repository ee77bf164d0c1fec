package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/util"
	"Ripple/internal/realtime"
	"Ripple/internal/repository"
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error)
	GetHistory(ctx context.Context, userID, convID uint64, page, limit int) ([]*dto.MessageDTO, *dto.PageMeta, error)
	ListConversations(ctx context.Context, userID uint64, page, limit int) ([]*dto.ConversationDTO, *dto.PageMeta, error)
	IsParticipant(ctx context.Context, userID, convID uint64) (bool, error)
}

type messageServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo mongo.MessageRepo
	userRepo    repository.UserRepo
	hub         RoomPublisher
}

func NewMessageService(
	convRepo repository.ConversationRepo,
	messageRepo mongo.MessageRepo,
	userRepo repository.UserRepo,
	hub RoomPublisher,
) MessageService {
	return &messageServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// SendMessage 发送私信：惰性建会话，消息落库后推送到会话房间与接收者个人房间。
// 推送是尽力而为，失败只记日志。
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	if req.TargetUserID == senderID {
		return nil, ErrTargetUserInvalid
	}
	if req.Content == "" {
		return nil, ErrMessageContentEmpty
	}

	target, err := s.userRepo.GetUserById(ctx, req.TargetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	conv, err := s.convRepo.GetOrCreate(ctx, senderID, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	msg := &mongo.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.convRepo.TouchLastMessage(ctx, conv.ID, msg.ID.Hex(), msg.CreatedAt); err != nil {
		log.Warn("更新会话最新消息失败", "convID", conv.ID, "err", err)
	}

	d := s.toMessageDTO(msg)

	// 同时投递到会话房间与接收者个人房间
	if err := s.hub.Publish(ctx, realtime.ConversationRoom(conv.ID), consts.EventNewMessage, d); err != nil {
		log.Warn("会话房间推送失败", "convID", conv.ID, "err", err)
	}
	if err := s.hub.Publish(ctx, realtime.UserRoom(req.TargetUserID), consts.EventNewMessage, d); err != nil {
		log.Warn("个人房间推送失败", "userID", req.TargetUserID, "err", err)
	}

	return d, nil
}

// GetHistory 拉取会话历史并顺带将对方消息置为已读
func (s *messageServiceImpl) GetHistory(ctx context.Context, userID, convID uint64, page, limit int) ([]*dto.MessageDTO, *dto.PageMeta, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, nil, UnauthorizedError
	}

	messages, err := s.messageRepo.GetHistory(ctx, convID, int64(limit), int64((page-1)*limit))
	if err != nil {
		return nil, nil, err
	}
	total, err := s.messageRepo.CountByConversation(ctx, convID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.messageRepo.MarkReadBulk(ctx, convID, userID); err != nil {
		log.Warn("批量已读失败", "convID", convID, "userID", userID, "err", err)
	}

	res := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, s.toMessageDTO(m))
	}
	return res, newPageMeta(total, page, limit), nil
}

// ListConversations 会话列表，按最新消息时间倒序
func (s *messageServiceImpl) ListConversations(ctx context.Context, userID uint64, page, limit int) ([]*dto.ConversationDTO, *dto.PageMeta, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.convRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	res := make([]*dto.ConversationDTO, 0, len(convs))
	for _, conv := range convs {
		d := &dto.ConversationDTO{
			ID:        conv.ID,
			UpdatedAt: conv.LastMessageAt.Format(time.RFC3339),
		}

		peer, err := s.userRepo.GetUserById(ctx, conv.PeerOf(userID))
		if err == nil && peer != nil {
			d.Peer = toUserDTO(peer)
		}

		if conv.LastMessageID != "" {
			if oid, oerr := primitive.ObjectIDFromHex(conv.LastMessageID); oerr == nil {
				if last, merr := s.messageRepo.GetMessage(ctx, oid); merr == nil && last != nil {
					d.LastMessage = s.toMessageDTO(last)
				}
			}
		}

		unread, err := s.messageRepo.CountUnread(ctx, conv.ID, userID)
		if err == nil {
			d.UnreadCount = unread
		}

		res = append(res, d)
	}
	return res, newPageMeta(total, page, limit), nil
}

// IsParticipant 会话成员校验，供实时通道的进房请求使用
func (s *messageServiceImpl) IsParticipant(ctx context.Context, userID, convID uint64) (bool, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, nil
	}
	return conv.HasParticipant(userID), nil
}

func (s *messageServiceImpl) toMessageDTO(m *mongo.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID:             m.ID.Hex(),
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}
