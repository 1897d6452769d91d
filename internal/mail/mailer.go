// Package mail wraps the outbound e-mail transport behind a narrow Sender
// interface so the notification dispatcher never depends on a concrete
// provider.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// ErrUnavailable indicates the mail transport could not be reached. Callers
// treat it as a non-fatal, retryable condition.
var ErrUnavailable = errors.New("mail: transport unavailable")

// Message is a single outbound e-mail.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Sender submits a message and returns the provider message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

// SMTPSender delivers messages over plain SMTP.
type SMTPSender struct {
	config SMTPConfig
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr, from string, to []string, msg []byte) error
}

// NewSMTPSender constructs a sender for the given SMTP endpoint.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{
		config: config,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Send submits one message. Connection-level failures are reported as
// ErrUnavailable so callers can distinguish transport outages from rejects.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("mail: recipient address is empty")
	}

	messageID := uuid.NewString()
	payload := buildPayload(s.config.From, msg, messageID)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if err := s.send(addr, s.config.From, []string{msg.To}, payload); err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("mail: send to %s failed: %w", msg.To, err)
	}
	return messageID, nil
}

func buildPayload(from string, msg Message, messageID string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s>\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return []byte(b.String())
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"connection refused", "no such host", "i/o timeout", "network is unreachable", "broken pipe"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
