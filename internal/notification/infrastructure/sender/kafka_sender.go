package sender

import (
	"context"
	"fmt"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/mq"
)

// DefaultEmailTopic 邮件队列主题
const DefaultEmailTopic = "notification.email"

// KafkaSender 把邮件指令写入队列，由 mailer 进程实际发送
type KafkaSender struct {
	producer mq.Publisher
	topic    string
}

// NewKafkaSender 创建 Kafka 发送器
func NewKafkaSender(producer mq.Publisher, topic string) *KafkaSender {
	if topic == "" {
		topic = DefaultEmailTopic
	}
	return &KafkaSender{producer: producer, topic: topic}
}

// Send 以通知 ID 为 key 入队
func (s *KafkaSender) Send(ctx context.Context, msg domain.EmailMessage) (domain.Status, error) {
	if err := msg.Validate(); err != nil {
		return domain.StatusFailed, err
	}
	if err := s.producer.SendMessage(ctx, s.topic, msg.NotificationID, msg); err != nil {
		return domain.StatusFailed, fmt.Errorf("enqueue email: %w", err)
	}
	return domain.StatusQueued, nil
}

// New 按 mail.driver 选择发送器，kafka 驱动需要 producer
func New(cfg config.MailConfig, producer mq.Publisher, topic string) (domain.Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From), nil
	case "kafka":
		if producer == nil {
			return nil, fmt.Errorf("mail driver kafka requires kafka to be enabled")
		}
		return NewKafkaSender(producer, topic), nil
	case "", "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
