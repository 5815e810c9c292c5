package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/mq"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// MessageSource 邮件队列消费端
type MessageSource interface {
	FetchMessage(ctx context.Context) (*mq.Message, error)
	CommitMessages(ctx context.Context, messages ...*mq.Message) error
}

// DeadLetterSink 死信投递
type DeadLetterSink interface {
	Send(ctx context.Context, msg *mq.Message, reason string, err error) error
}

// MailWorkerOptions 重试参数
type MailWorkerOptions struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// MailWorker 消费 notification.email 队列并通过 SMTP 发送
type MailWorker struct {
	source  MessageSource
	smtp    domain.Sender
	dlq     DeadLetterSink
	repo    domain.NotificationRepository
	metrics *metrics.Metrics
	opts    MailWorkerOptions
	now     func() time.Time
}

// NewMailWorker 创建邮件消费者。repo 可为空，此时不回写通知状态
func NewMailWorker(source MessageSource, smtp domain.Sender, dlq DeadLetterSink, repo domain.NotificationRepository, m *metrics.Metrics, opts MailWorkerOptions) *MailWorker {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * time.Second
	}
	return &MailWorker{
		source:  source,
		smtp:    smtp,
		dlq:     dlq,
		repo:    repo,
		metrics: m,
		opts:    opts,
		now:     time.Now,
	}
}

// Run 循环消费直到 ctx 取消。每条消息处理完才提交偏移量
func (w *MailWorker) Run(ctx context.Context) error {
	logger.Info(ctx, "mail worker started", "max_attempts", w.opts.MaxAttempts)
	for {
		msg, err := w.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "mail worker stopped")
				return nil
			}
			logger.Error(ctx, "failed to fetch email message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if err := w.Handle(ctx, msg); err != nil {
			// 停机中断的消息不提交，重启后重新投递
			logger.Info(ctx, "mail worker stopped", "offset", msg.Offset)
			return nil
		}

		if err := w.source.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error(ctx, "failed to commit email message", "offset", msg.Offset, "error", err)
		}
	}
}

// Handle 处理单条消息。失败的消息进入死信队列，不阻塞后续消息。
// 仅当 ctx 在投递过程中被取消时返回错误，此时消息保持未处理状态
func (w *MailWorker) Handle(ctx context.Context, msg *mq.Message) error {
	var email domain.EmailMessage
	if err := msg.UnmarshalPayload(&email); err != nil {
		w.deadLetter(ctx, msg, "decode", err)
		return nil
	}
	if err := email.Validate(); err != nil {
		w.deadLetter(ctx, msg, "invalid", err)
		w.updateStatus(ctx, email.NotificationID, err)
		return nil
	}

	attempts := 0
	err := utils.RetryWithBackoff(ctx, w.opts.MaxAttempts, w.opts.InitialDelay, w.opts.MaxDelay, func() error {
		attempts++
		_, err := w.smtp.Send(ctx, email)
		if err != nil && errorx.Is(err, errorx.CodeValidation) {
			return utils.Permanent(err)
		}
		return err
	})
	if err != nil && ctx.Err() != nil {
		logger.Warn(ctx, "email delivery interrupted", "notification_id", email.NotificationID, "attempts", attempts, "error", err)
		return ctx.Err()
	}
	if err != nil {
		logger.Warn(ctx, "email delivery failed", "notification_id", email.NotificationID, "attempts", attempts, "error", err)
		w.metrics.RecordNotification(string(domain.ChannelEmail), "failed")
		w.deadLetter(ctx, msg, "delivery", err)
		w.updateStatus(ctx, email.NotificationID, err)
		return nil
	}

	w.metrics.RecordNotification(string(domain.ChannelEmail), "sent")
	w.updateStatus(ctx, email.NotificationID, nil)
	logger.Debug(ctx, "email delivered", "notification_id", email.NotificationID, "attempts", attempts)
	return nil
}

func (w *MailWorker) deadLetter(ctx context.Context, msg *mq.Message, reason string, cause error) {
	if w.dlq == nil {
		logger.Error(ctx, "dropping email message", "reason", reason, "offset", msg.Offset, "error", cause)
		return
	}
	if err := w.dlq.Send(ctx, msg, reason, cause); err != nil {
		logger.Error(ctx, "failed to send email message to dlq", "reason", reason, "error", errors.Join(cause, err))
	}
}

func (w *MailWorker) updateStatus(ctx context.Context, notificationID string, cause error) {
	if w.repo == nil || notificationID == "" {
		return
	}
	n, err := w.repo.GetByNotificationID(ctx, notificationID)
	if err != nil {
		logger.Error(ctx, "failed to load email notification", "notification_id", notificationID, "error", err)
		return
	}
	if n == nil {
		return
	}
	if cause != nil {
		n.MarkFailed(cause.Error())
	} else {
		n.MarkSent(w.now())
	}
	if err := w.repo.UpdateStatus(ctx, n); err != nil {
		logger.Error(ctx, "failed to update email notification", "notification_id", notificationID, "error", err)
	}
}
