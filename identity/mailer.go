package identity

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// MailKind distinguishes the two message templates the service sends.
type MailKind string

const (
	MailVerification  MailKind = "verification"
	MailPasswordReset MailKind = "password_reset"
)

// Mail is one outbound message. Token is the opaque challenge string the
// recipient presents back through ConfirmVerification or ConfirmPasswordReset.
type Mail struct {
	To       string    `json:"to"`
	Kind     MailKind  `json:"kind"`
	Token    string    `json:"token"`
	QueuedAt time.Time `json:"queuedAt"`
}

// Mailer delivers outbound mail. Implementations must be safe for concurrent
// use. A Send error is surfaced to the caller as a soft failure; the account
// state is never rolled back because mail did not go out.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// NoOpMailer discards all mail. Useful for tests that only exercise the
// directory paths.
type NoOpMailer struct{}

func (NoOpMailer) Send(context.Context, Mail) error { return nil }

// ChannelMailer forwards mail to a buffered channel without blocking. Mail
// that does not fit is dropped and counted.
type ChannelMailer struct {
	ch      chan Mail
	dropped atomic.Uint64
}

func NewChannelMailer(buffer int) *ChannelMailer {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelMailer{ch: make(chan Mail, buffer)}
}

func (m *ChannelMailer) Send(_ context.Context, mail Mail) error {
	select {
	case m.ch <- mail:
	default:
		m.dropped.Add(1)
	}
	return nil
}

// Mail returns the receive side of the outbox.
func (m *ChannelMailer) Mail() <-chan Mail { return m.ch }

// Dropped reports how many messages were discarded because the outbox was
// full.
func (m *ChannelMailer) Dropped() uint64 { return m.dropped.Load() }

// JSONWriterMailer writes each message as one JSON line. Writes are
// serialized; the writer does not need to be concurrency safe.
type JSONWriterMailer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterMailer(w io.Writer) *JSONWriterMailer {
	return &JSONWriterMailer{enc: json.NewEncoder(w)}
}

func (m *JSONWriterMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enc.Encode(mail)
}
