package sender

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	msgs []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.msgs = append(d.msgs, m...)
	return d.err
}

type fakePublisher struct {
	topic string
	key   string
	value any
	err   error
}

func (p *fakePublisher) SendMessage(_ context.Context, topic, key string, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

var msg = domain.EmailMessage{NotificationID: "n-1", To: "a@example.com", Subject: "Interview", Body: "see you"}

func TestSMTPSender(t *testing.T) {
	d := &fakeDialer{}
	s := NewSMTPSender("localhost", 25, "", "", "noreply@osta.test")
	s.dialer = d

	status, err := s.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, status)
	require.Len(t, d.msgs, 1)
	assert.Equal(t, []string{"a@example.com"}, d.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"Interview"}, d.msgs[0].GetHeader("Subject"))
	assert.Equal(t, []string{"noreply@osta.test"}, d.msgs[0].GetHeader("From"))

	d.err = errors.New("421 try later")
	status, err = s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, domain.StatusFailed, status)
}

func TestSMTPSenderRejectsBadRecipient(t *testing.T) {
	d := &fakeDialer{}
	s := NewSMTPSender("localhost", 25, "", "", "noreply@osta.test")
	s.dialer = d

	bad := msg
	bad.To = "nobody"
	_, err := s.Send(context.Background(), bad)
	assert.True(t, errorx.Is(err, errorx.CodeValidation))
	assert.Empty(t, d.msgs)
}

func TestKafkaSenderQueues(t *testing.T) {
	p := &fakePublisher{}
	s := NewKafkaSender(p, "")

	status, err := s.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, status)
	assert.Equal(t, DefaultEmailTopic, p.topic)
	assert.Equal(t, "n-1", p.key)
	assert.Equal(t, msg, p.value)

	p.err = errors.New("broker down")
	status, err = s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, domain.StatusFailed, status)
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(config.MailConfig{Driver: "log"}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = New(config.MailConfig{Driver: "smtp", Host: "localhost", Port: 25}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = New(config.MailConfig{Driver: "kafka"}, nil, "")
	assert.Error(t, err)

	s, err = New(config.MailConfig{Driver: "kafka"}, &fakePublisher{}, "mail")
	require.NoError(t, err)
	assert.IsType(t, &KafkaSender{}, s)

	_, err = New(config.MailConfig{Driver: "pigeon"}, nil, "")
	assert.Error(t, err)
}
