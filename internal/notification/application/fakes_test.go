package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/mq"
)

type memRepo struct {
	mu    sync.Mutex
	items []*domain.Notification
	fail  error
}

func (r *memRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	n.ID = uint(len(r.items) + 1)
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == n.ID {
			it.Status = n.Status
			it.ErrorMessage = n.ErrorMessage
			it.SentAt = n.SentAt
			return nil
		}
	}
	return errors.New("not found")
}

func (r *memRepo) GetByNotificationID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.NotificationID == id {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, f domain.Filter) ([]*domain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		it := r.items[i]
		if it.UserID != f.UserID || (f.Channel != "" && it.Channel != f.Channel) || (f.UnreadOnly && it.IsRead) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) MarkRead(_ context.Context, userID uint, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.NotificationID == id && it.UserID == userID {
			it.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && it.Channel == domain.ChannelInApp && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) byChannel(ch domain.Channel) []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, it := range r.items {
		if it.Channel == ch {
			out = append(out, it)
		}
	}
	return out
}

type stubSender struct {
	status domain.Status
	errs   []error
	calls  int
	sent   []domain.EmailMessage
	onSend func()
}

func (s *stubSender) Send(_ context.Context, msg domain.EmailMessage) (domain.Status, error) {
	s.calls++
	if s.onSend != nil {
		s.onSend()
	}
	s.sent = append(s.sent, msg)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return domain.StatusFailed, err
		}
	}
	if s.status == "" {
		return domain.StatusSent, nil
	}
	return s.status, nil
}

type queueSource struct {
	msgs      []*mq.Message
	committed []int64
	cancel    context.CancelFunc
}

func (q *queueSource) FetchMessage(ctx context.Context) (*mq.Message, error) {
	if len(q.msgs) == 0 {
		q.cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	m := q.msgs[0]
	q.msgs = q.msgs[1:]
	return m, nil
}

func (q *queueSource) CommitMessages(_ context.Context, msgs ...*mq.Message) error {
	for _, m := range msgs {
		q.committed = append(q.committed, m.Offset)
	}
	return nil
}

type deadLetters struct {
	reasons []string
}

func (d *deadLetters) Send(_ context.Context, _ *mq.Message, reason string, _ error) error {
	d.reasons = append(d.reasons, reason)
	return nil
}

func sequence() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("n-%d", n)
	}
}
