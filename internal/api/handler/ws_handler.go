package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/redis"
	"Ripple/internal/pkg/response"
	"Ripple/internal/pkg/security"
	"Ripple/internal/realtime"
	"Ripple/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub        *realtime.Hub
	messageSvc service.MessageService
}

func NewWsHandler(hub *realtime.Hub, messageSvc service.MessageService) *WsHandler {
	return &WsHandler{hub: hub, messageSvc: messageSvc}
}

// Connect 建立实时通道：鉴权 → 升级 → 进入个人房间 → 按需进入会话房间
func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权：query 参数优先，其次 Authorization 头
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}

	signature, err := security.ExtractSignature(token)
	if err != nil {
		response.Error(c, service.UnauthorizedError)
		return
	}
	if denied, _ := redis.GetValue(c.Request.Context(), consts.AuthDenyKey+signature); denied != "" {
		response.Error(c, service.UnauthorizedError)
		return
	}

	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	session := s.hub.Connect(context.Background(), userID)
	defer func() {
		_ = session.Close()
	}()

	log.Info("用户 WS 连接已建立", "userID", userID)

	stopChan := make(chan struct{})

	// 读循环：处理客户端上行事件并监听断开
	go s.readLoop(conn, session, stopChan)

	// 写循环：监听房间消息并推送至客户端
	for {
		select {
		case msg, ok := <-session.Messages():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Error("WS 推送失败", "userID", userID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "userID", userID)
			return
		}
	}
}

func (s *WsHandler) readLoop(conn *websocket.Conn, session *realtime.Session, stopChan chan struct{}) {
	defer close(stopChan)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev dto.JoinConversationDTO
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Event != consts.ClientEventJoinConversation || ev.Data.ConversationID == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		ok, err := s.messageSvc.IsParticipant(ctx, session.UserID(), ev.Data.ConversationID)
		if err != nil || !ok {
			cancel()
			log.Warn("拒绝进入会话房间", "userID", session.UserID(), "convID", ev.Data.ConversationID, "err", err)
			continue
		}
		if err := session.JoinConversation(ctx, ev.Data.ConversationID); err != nil {
			log.Error("进入会话房间失败", "userID", session.UserID(), "convID", ev.Data.ConversationID, "err", err)
		}
		cancel()
	}
}
