package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newService(repo *memRepo, sender domain.Sender, m *metrics.Metrics) *NotificationService {
	s := NewNotificationService(repo, sender, m)
	s.now = func() time.Time { return fixedNow }
	s.newID = sequence()
	return s
}

func TestNotifyStoresInAppAndEmail(t *testing.T) {
	repo := &memRepo{}
	sender := &stubSender{}
	m := metrics.New("notify_ok")
	svc := newService(repo, sender, m)

	err := svc.Notify(context.Background(), NotifyCommand{UserID: 4, Recipient: "a@example.com", Subject: "Update", Content: "hello"})
	require.NoError(t, err)

	inApp := repo.byChannel(domain.ChannelInApp)
	require.Len(t, inApp, 1)
	assert.Equal(t, domain.StatusSent, inApp[0].Status)
	assert.False(t, inApp[0].IsRead)

	email := repo.byChannel(domain.ChannelEmail)
	require.Len(t, email, 1)
	assert.Equal(t, domain.StatusSent, email[0].Status)
	assert.Equal(t, "a@example.com", email[0].Recipient)
	require.NotNil(t, email[0].SentAt)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, email[0].NotificationID, sender.sent[0].NotificationID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("EMAIL", "sent")))
}

func TestNotifyQueuedSender(t *testing.T) {
	repo := &memRepo{}
	svc := newService(repo, &stubSender{status: domain.StatusQueued}, nil)

	require.NoError(t, svc.Notify(context.Background(), NotifyCommand{UserID: 4, Recipient: "a@example.com", Subject: "s"}))
	email := repo.byChannel(domain.ChannelEmail)
	require.Len(t, email, 1)
	assert.Equal(t, domain.StatusQueued, email[0].Status)
	assert.Nil(t, email[0].SentAt)
}

func TestNotifySendFailureMarksFailed(t *testing.T) {
	repo := &memRepo{}
	svc := newService(repo, &stubSender{errs: []error{errors.New("smtp down")}}, nil)

	err := svc.Notify(context.Background(), NotifyCommand{UserID: 4, Recipient: "a@example.com", Subject: "s"})
	require.Error(t, err)

	email := repo.byChannel(domain.ChannelEmail)
	require.Len(t, email, 1)
	assert.Equal(t, domain.StatusFailed, email[0].Status)
	assert.Equal(t, "smtp down", email[0].ErrorMessage)
	assert.Len(t, repo.byChannel(domain.ChannelInApp), 1)
}

func TestNotifyWithoutRecipientSkipsEmail(t *testing.T) {
	repo := &memRepo{}
	sender := &stubSender{}
	svc := newService(repo, sender, nil)

	require.NoError(t, svc.Notify(context.Background(), NotifyCommand{UserID: 4, Subject: "s"}))
	assert.Empty(t, repo.byChannel(domain.ChannelEmail))
	assert.Zero(t, sender.calls)
}

func TestNotifyRejectsMissingFields(t *testing.T) {
	svc := newService(&memRepo{}, nil, nil)
	err := svc.Notify(context.Background(), NotifyCommand{Subject: "s"})
	assert.True(t, errorx.Is(err, errorx.CodeValidation))
}

func TestListMarkReadAndUnreadCount(t *testing.T) {
	repo := &memRepo{}
	svc := newService(repo, nil, nil)
	ctx := context.Background()
	for _, subject := range []string{"one", "two"} {
		require.NoError(t, svc.Notify(ctx, NotifyCommand{UserID: 4, Subject: subject}))
	}
	require.NoError(t, svc.Notify(ctx, NotifyCommand{UserID: 5, Subject: "other"}))

	page := utils.NewPagination(1, 10)
	items, err := svc.List(ctx, 4, false, page)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "two", items[0].Subject)
	assert.Equal(t, int64(2), page.Total)

	n, err := svc.UnreadCount(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = svc.MarkRead(ctx, 5, items[0].NotificationID)
	assert.True(t, errorx.Is(err, errorx.CodeNotFound))

	require.NoError(t, svc.MarkRead(ctx, 4, items[0].NotificationID))
	n, err = svc.UnreadCount(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err := svc.List(ctx, 4, true, utils.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "one", unread[0].Subject)
}
