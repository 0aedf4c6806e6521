package email

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MrEthical07/authservice/domain"
)

// Message is one delivered email.
type Message struct {
	Recipient domain.Email
	Subject   string
	Content   string
}

// MockClient implements domain.EmailClient by logging. Content carries
// 2FA codes, so only its length reaches the log; Sent and Last keep the
// full message. It never fails unless ctx is already done.
type MockClient struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewMockClient logs through logger, or slog.Default when nil.
func NewMockClient(logger *slog.Logger) *MockClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockClient{logger: logger}
}

func (c *MockClient) SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "sending email",
		"recipient", recipient.String(),
		"subject", subject,
		"content_bytes", len(content),
	)

	c.mu.Lock()
	c.sent = append(c.sent, Message{Recipient: recipient, Subject: subject, Content: content})
	c.mu.Unlock()

	return nil
}

// Sent returns a copy of every message delivered so far.
func (c *MockClient) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

// Last returns the most recent message to recipient.
func (c *MockClient) Last(recipient domain.Email) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Recipient == recipient {
			return c.sent[i], true
		}
	}
	return Message{}, false
}
