package realtime

import (
	"Ripple/internal/pkg/consts"
	"context"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Envelope 下行帧统一格式
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// UserRoom 用户个人房间名
func UserRoom(userID uint64) string {
	return consts.RealtimeUserKey + strconv.FormatUint(userID, 10)
}

// ConversationRoom 会话房间名
func ConversationRoom(convID uint64) string {
	return consts.RealtimeConversationKey + strconv.FormatUint(convID, 10)
}

// Hub 实时推送中枢：以 Redis 发布订阅为总线，支撑多实例部署
type Hub struct {
	rdb *redis.Client

	mu     sync.RWMutex
	online map[uint64]int
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:    rdb,
		online: make(map[uint64]int),
	}
}

// Publish 向房间广播一条事件，序列化失败或总线不可达均返回错误由调用方决定是否忽略
func (h *Hub) Publish(ctx context.Context, room string, event string, payload interface{}) error {
	data, err := json.Marshal(&Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, room, data).Err()
}

// IsOnline 本实例是否持有该用户的活跃连接
func (h *Hub) IsOnline(userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[userID] > 0
}

// Connect 建立会话：订阅用户个人房间并登记在线状态
func (h *Hub) Connect(ctx context.Context, userID uint64) *Session {
	pubsub := h.rdb.Subscribe(ctx, UserRoom(userID))

	h.mu.Lock()
	h.online[userID]++
	h.mu.Unlock()

	return &Session{
		hub:    h,
		userID: userID,
		pubsub: pubsub,
		joined: make(map[uint64]struct{}),
	}
}

// Session 单条 Websocket 连接对应的订阅会话
type Session struct {
	hub    *Hub
	userID uint64
	pubsub *redis.PubSub

	mu     sync.Mutex
	joined map[uint64]struct{}
}

func (s *Session) UserID() uint64 {
	return s.userID
}

// JoinConversation 追加订阅一个会话房间，重复加入为无害操作
func (s *Session) JoinConversation(ctx context.Context, convID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.joined[convID]; ok {
		return nil
	}
	if err := s.pubsub.Subscribe(ctx, ConversationRoom(convID)); err != nil {
		return err
	}
	s.joined[convID] = struct{}{}
	return nil
}

// Messages 房间消息的接收通道
func (s *Session) Messages() <-chan *redis.Message {
	return s.pubsub.Channel()
}

// Close 释放订阅并注销在线状态
func (s *Session) Close() error {
	s.hub.mu.Lock()
	if s.hub.online[s.userID] > 1 {
		s.hub.online[s.userID]--
	} else {
		delete(s.hub.online, s.userID)
	}
	s.hub.mu.Unlock()
	return s.pubsub.Close()
}
