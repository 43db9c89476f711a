// Package gmail implements the Mailer port on the Gmail API.
//
// Messages are assembled as RFC 2822 text, base64url-encoded and sent
// through Users.Messages.Send on the authenticated account.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/slipdeck/internal/connectors/google"
	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/logger"
)

// Ensure Mailer implements the interface.
var _ driven.Mailer = (*Mailer)(nil)

// Mailer sends plain-text mail through the Gmail API.
type Mailer struct {
	svc     *gmail.Service
	limiter *google.RateLimiter
}

// NewMailer creates a Gmail-backed mailer. Messages are sent as the
// authenticated user ("me" in Gmail API terms).
func NewMailer(svc *gmail.Service) *Mailer {
	return &Mailer{
		svc:     svc,
		limiter: google.NewRateLimiter(google.ServiceGmail),
	}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("%w: empty recipient address", domain.ErrInvalidInput)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	raw := buildMessage(to, subject, body)
	sent, err := m.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).
		Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			m.limiter.RecordRateLimitError(0)
			return fmt.Errorf("send to %s: %w", to, domain.ErrRateLimited)
		}
		return fmt.Errorf("send to %s: %w", to, google.WrapError(err))
	}

	logger.Debug("gmail: sent message %s to %s", sent.Id, to)
	return nil
}

// buildMessage assembles a base64url-encoded RFC 2822 message.
// The subject is Q-encoded so non-ASCII survives transport.
func buildMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
