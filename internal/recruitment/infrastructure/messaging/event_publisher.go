package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/idgen"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/mq"
)

// DefaultTopic 招聘领域事件主题
const DefaultTopic = "recruitment.events"

// Envelope 事件信封
type Envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// KafkaEventPublisher 将领域事件写入 Kafka，key 为聚合编号
type KafkaEventPublisher struct {
	producer mq.Publisher
	topic    string
	now      func() time.Time
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(producer mq.Publisher, topic string) *KafkaEventPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaEventPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	env := Envelope{
		EventID:    idgen.GenString(),
		EventType:  eventType,
		TraceID:    contextx.TraceID(ctx),
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	return p.producer.SendMessage(ctx, p.topic, key, env)
}

// LogEventPublisher 未配置 Kafka 时只记录日志
type LogEventPublisher struct{}

func (LogEventPublisher) Publish(ctx context.Context, eventType, key string, _ any) error {
	logger.Info(ctx, "domain event", "event_type", eventType, "key", key)
	return nil
}

var (
	_ domain.EventPublisher = (*KafkaEventPublisher)(nil)
	_ domain.EventPublisher = LogEventPublisher{}
)
