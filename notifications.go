package librarian

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const (
	subjectNewBook       = "New Book Added to the Library"
	newBookEmailTemplate = "emails/new_book"

	defaultNotificationQueueSize = 64
)

// BookCreatedMessage is the handoff payload for the fan-out worker
type BookCreatedMessage struct {
	Book    *Book
	AddedBy uuid.UUID
}

func (m BookCreatedMessage) Type() string { return "book.created" }

// NotificationDispatcher decouples book creation from email fan-out: the
// request path only enqueues, and a single worker delivers one email per
// verified user. Every delivery failure is logged and swallowed; a full
// queue drops the message (also logged) rather than blocking the request.
type NotificationDispatcher struct {
	repo   RepositoryManager
	mail   Mailer
	logger Logger
	queue  chan BookCreatedMessage
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Notifier = (*NotificationDispatcher)(nil)

type NotificationOption func(*NotificationDispatcher)

func WithNotificationQueueSize(size int) NotificationOption {
	return func(d *NotificationDispatcher) {
		if size > 0 {
			d.queue = make(chan BookCreatedMessage, size)
		}
	}
}

func NewNotificationDispatcher(repo RepositoryManager, mail Mailer, logger Logger, opts ...NotificationOption) *NotificationDispatcher {
	if logger == nil {
		logger = defLogger{}
	}

	d := &NotificationDispatcher{
		repo:   repo,
		mail:   mail,
		logger: logger,
		queue:  make(chan BookCreatedMessage, defaultNotificationQueueSize),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// BookCreated enqueues a fan-out for the given book
func (d *NotificationDispatcher) BookCreated(book *Book, addedBy uuid.UUID) {
	msg := BookCreatedMessage{Book: book, AddedBy: addedBy}
	select {
	case d.queue <- msg:
	default:
		d.logger.Error("notification queue full, dropping %s for book %s", msg.Type(), book.ID)
	}
}

// Close stops accepting messages and waits for in-flight deliveries
func (d *NotificationDispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *NotificationDispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		// Detached from the originating request on purpose: a client
		// disconnect must not abort deliveries already handed off.
		d.deliver(context.Background(), msg)
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, msg BookCreatedMessage) {
	users, err := d.repo.Users().ListVerified(ctx)
	if err != nil {
		d.logger.Error("book notification: failed to list recipients: %s", err)
		return
	}

	if len(users) == 0 {
		return
	}

	addedBy, err := d.repo.Users().GetByID(ctx, msg.AddedBy)
	if err != nil {
		d.logger.Error("book notification: failed to load author %s: %s", msg.AddedBy, err)
		return
	}

	data := map[string]any{
		"title":    msg.Book.Title,
		"author":   msg.Book.Author,
		"category": msg.Book.Category,
		"added_by": addedBy.Email,
	}

	sent := 0
	for _, u := range users {
		if err := d.mail.Send(ctx, u.Email, subjectNewBook, newBookEmailTemplate, data); err != nil {
			d.logger.Error("book notification: send to %s failed: %s", u.Email, err)
			continue
		}
		sent++
	}

	d.logger.Info("book notification: sent %d/%d emails for %q", sent, len(users), msg.Book.Title)
}
