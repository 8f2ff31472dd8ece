package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

var expireAt = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func welcome(userID uint, email string) notification.WelcomeMessage {
	return notification.WelcomeMessage{
		UserID:      userID,
		Name:        "Asha",
		Email:       email,
		PlanTitle:   "Gold Monthly",
		PaymentType: "one-time",
		AmountMinor: 49900,
		Currency:    "INR",
		Expire:      expireAt,
	}
}

func newNotifier(sender Sender, size int) *QueueNotifier {
	composer := NewComposer(markdown.NewRenderer(), "https://examforge.test/")
	return NewQueueNotifier(composer, sender, size, logger.NewDiscard())
}

func stop(t *testing.T, n *QueueNotifier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n.Stop(ctx)
}

func TestQueueNotifier_DeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	n := newNotifier(sender, 8)
	n.Start()

	n.NotifyWelcome(context.Background(), welcome(1, "asha@example.com"))
	n.NotifyExpired(context.Background(), notification.ExpiryMessage{
		UserID: 2, Email: "ravi@example.com", PlanTitle: "Silver Quarterly", ExpiredAt: expireAt,
	})
	stop(t, n)

	sent := sender.messages()
	require.Len(t, sent, 2)

	assert.Equal(t, "asha@example.com", sent[0].To)
	assert.Equal(t, "Your Gold Monthly subscription is active", sent[0].Subject)
	assert.Contains(t, sent[0].PlainBody, "499.00")
	assert.Contains(t, sent[0].PlainBody, "2026-06-01")
	assert.Contains(t, sent[0].PlainBody, "https://examforge.test/dashboard")
	assert.Contains(t, sent[0].HTMLBody, "<strong>Gold Monthly</strong>")

	assert.Equal(t, "Your subscription has expired", sent[1].Subject)
	assert.Contains(t, sent[1].PlainBody, "Silver Quarterly")
	assert.Contains(t, sent[1].PlainBody, "Hi there")
}

func TestQueueNotifier_DropsWhenFull(t *testing.T) {
	sender := &recordingSender{}
	n := newNotifier(sender, 1)

	n.NotifyWelcome(context.Background(), welcome(1, "a@example.com"))
	n.NotifyWelcome(context.Background(), welcome(2, "b@example.com"))

	n.Start()
	stop(t, n)

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@example.com", sent[0].To)

	assert.NotPanics(t, func() {
		n.NotifyWelcome(context.Background(), welcome(3, "c@example.com"))
	})
}

func TestQueueNotifier_SkipsAndSurvivesFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := newNotifier(sender, 4)
	n.Start()

	n.NotifyWelcome(context.Background(), welcome(1, ""))
	n.NotifyWelcome(context.Background(), welcome(2, "b@example.com"))
	stop(t, n)

	assert.Empty(t, sender.messages())
}

func TestComposer_EscapesUserInput(t *testing.T) {
	c := NewComposer(markdown.NewRenderer(), "")
	msg := welcome(1, "a@example.com")
	msg.Name = "<script>alert(1)</script>Asha"
	msg.AutoPay = true

	out, err := c.Welcome(msg)
	require.NoError(t, err)
	assert.NotContains(t, out.HTMLBody, "<script>")
	assert.NotContains(t, out.ToName, "<script>")
	assert.Contains(t, out.PlainBody, "Renewal: automatic")
	assert.Contains(t, out.PlainBody, "/dashboard")
}
