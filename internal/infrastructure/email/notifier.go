package email

import (
	"context"
	"sync"
	"time"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/shared/goroutine"
	"github.com/examforge/examforge/internal/shared/logger"
)

const sendTimeout = 30 * time.Second

type job struct {
	kind    string
	welcome notification.WelcomeMessage
	expiry  notification.ExpiryMessage
}

// QueueNotifier buffers notifications and sends them from one worker. A full
// queue drops the message with a warning instead of blocking the caller.
type QueueNotifier struct {
	composer *Composer
	sender   Sender
	logger   logger.Interface

	queue    chan job
	done     chan struct{}
	stopOnce sync.Once
}

func NewQueueNotifier(composer *Composer, sender Sender, queueSize int, logger logger.Interface) *QueueNotifier {
	if queueSize < 1 {
		queueSize = 1
	}
	return &QueueNotifier{
		composer: composer,
		sender:   sender,
		logger:   logger,
		queue:    make(chan job, queueSize),
		done:     make(chan struct{}),
	}
}

var _ notification.Notifier = (*QueueNotifier)(nil)

// Start launches the worker. Stop drains what is already queued.
func (n *QueueNotifier) Start() {
	goroutine.SafeGo(n.logger, "email-notifier", n.run)
}

// Stop closes the queue and waits for the worker to drain it or for ctx.
func (n *QueueNotifier) Stop(ctx context.Context) {
	n.stopOnce.Do(func() { close(n.queue) })
	select {
	case <-n.done:
	case <-ctx.Done():
		n.logger.Warnw("email notifier stopped before the queue drained", "pending", len(n.queue))
	}
}

func (n *QueueNotifier) NotifyWelcome(ctx context.Context, msg notification.WelcomeMessage) {
	n.enqueue(job{kind: "welcome", welcome: msg}, msg.UserID)
}

func (n *QueueNotifier) NotifyExpired(ctx context.Context, msg notification.ExpiryMessage) {
	n.enqueue(job{kind: "expired", expiry: msg}, msg.UserID)
}

func (n *QueueNotifier) enqueue(j job, userID uint) {
	defer func() {
		// Sending on a closed queue during shutdown.
		if recover() != nil {
			n.logger.Warnw("email notifier stopped, notification dropped", "kind", j.kind, "user_id", userID)
		}
	}()

	select {
	case n.queue <- j:
	default:
		n.logger.Warnw("email queue full, notification dropped", "kind", j.kind, "user_id", userID)
	}
}

func (n *QueueNotifier) run() {
	defer close(n.done)
	for j := range n.queue {
		n.deliver(j)
	}
}

func (n *QueueNotifier) deliver(j job) {
	var (
		msg    Message
		err    error
		userID uint
	)
	switch j.kind {
	case "welcome":
		userID = j.welcome.UserID
		msg, err = n.composer.Welcome(j.welcome)
	case "expired":
		userID = j.expiry.UserID
		msg, err = n.composer.Expired(j.expiry)
	}
	if err != nil {
		n.logger.Errorw("failed to render email", "kind", j.kind, "user_id", userID, "error", err)
		return
	}
	if msg.To == "" {
		n.logger.Warnw("user has no email address, notification skipped", "kind", j.kind, "user_id", userID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Errorw("failed to send email", "kind", j.kind, "user_id", userID, "error", err)
		return
	}
	n.logger.Debugw("email sent", "kind", j.kind, "user_id", userID)
}
