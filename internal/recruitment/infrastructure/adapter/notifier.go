package adapter

import (
	"context"

	notifyapp "github.com/wyfcoding/jobportal/internal/notification/application"
	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
)

// NotificationSink 通知服务入口
type NotificationSink interface {
	Notify(ctx context.Context, cmd notifyapp.NotifyCommand) error
}

type notifier struct {
	sink NotificationSink
}

// NewNotifier 把招聘通知转交通知上下文
func NewNotifier(sink NotificationSink) domain.Notifier {
	return &notifier{sink: sink}
}

func (n *notifier) Notify(ctx context.Context, notice domain.Notice) error {
	return n.sink.Notify(ctx, notifyapp.NotifyCommand{
		UserID:    notice.UserID,
		Recipient: notice.Email,
		Subject:   notice.Subject,
		Content:   notice.Content,
	})
}
