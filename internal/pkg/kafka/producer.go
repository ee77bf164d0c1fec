package kafka

import (
	"Ripple/internal/api/config"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EngagementEvent 互动事件，供下游分析管道消费
type EngagementEvent struct {
	Kind         string    `json:"kind"` // like / unlike / comment / follow / unfollow
	ActorID      uint64    `json:"actor_id"`
	TargetUserID uint64    `json:"target_user_id"`
	PostID       uint64    `json:"post_id,omitempty"`
	CommentID    uint64    `json:"comment_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Producer 异步互动事件生产者，发送失败只记录日志，绝不阻塞请求链路
type Producer struct {
	ap    sarama.AsyncProducer
	topic string
	done  chan struct{}
}

func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	// 未配置 broker 时返回 nil，Emit/Close 对 nil 静默
	if len(cfg.Brokers) == 0 {
		log.Warn("kafka brokers not configured, engagement events disabled")
		return nil, nil
	}

	saramaCfg := newSaramaConfig(cfg)

	ap, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create async producer")
	}

	p := &Producer{
		ap:    ap,
		topic: cfg.EngagementTopic,
		done:  make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		for perr := range ap.Errors() {
			log.Error("engagement event delivery failed", "topic", perr.Msg.Topic, "err", perr.Err)
		}
	}()

	return p, nil
}

// Emit 投递一条互动事件，Producer 为 nil 时静默忽略
func (p *Producer) Emit(ev *EngagementEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Error("marshal engagement event failed", "err", err)
		return
	}

	p.ap.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(ev.ActorID, 10)),
		Value: sarama.ByteEncoder(data),
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	err := p.ap.Close()
	<-p.done
	return err
}
