package kafka

import (
	"Ripple/internal/api/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerWithoutBrokersIsDisabled(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{})
	require.NoError(t, err)
	assert.Nil(t, p, "没有 broker 时不应创建生产者")
}

func TestNilProducerEmitAndCloseAreNoOps(t *testing.T) {
	var p *Producer

	// nil 生产者静默吞掉事件，关闭也不报错
	p.Emit(&EngagementEvent{Kind: "like", ActorID: 1, TargetUserID: 2, OccurredAt: time.Now()})
	assert.NoError(t, p.Close())
}
