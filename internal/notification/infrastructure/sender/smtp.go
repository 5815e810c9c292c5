// Package sender 邮件发送器实现：SMTP 直发、Kafka 入队、日志
package sender

import (
	"context"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender 通过 gomail 直接投递
type SMTPSender struct {
	dialer dialer
	from   string
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send 同步发送，校验失败返回 VALIDATION 错误
func (s *SMTPSender) Send(ctx context.Context, msg domain.EmailMessage) (domain.Status, error) {
	if err := msg.Validate(); err != nil {
		return domain.StatusFailed, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return domain.StatusFailed, err
	}
	logger.Info(ctx, "email sent", "notification_id", msg.NotificationID, "to", msg.To)
	return domain.StatusSent, nil
}

// LogSender 仅记录日志，开发环境使用
type LogSender struct{}

// Send 记录邮件内容后视为已发送
func (LogSender) Send(ctx context.Context, msg domain.EmailMessage) (domain.Status, error) {
	logger.Info(ctx, "email (log driver)", "notification_id", msg.NotificationID, "to", msg.To, "subject", msg.Subject)
	return domain.StatusSent, nil
}
