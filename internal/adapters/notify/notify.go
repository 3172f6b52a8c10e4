// Package notify delivers password-reset codes to users.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/okian/pricewise/pkg/logger"
)

// ErrNoRecipient is returned when the destination address is empty.
var ErrNoRecipient = errors.New("empty recipient")

// Notifier sends a reset code to an email address.
type Notifier interface {
	SendResetCode(ctx context.Context, toEmail, code string, ttl time.Duration) error
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends reset codes over SMTP.
type EmailNotifier struct {
	from   string
	sender Sender
	log    logger.Logger
}

// NewEmailNotifier creates a notifier that dials cfg for every message.
func NewEmailNotifier(cfg SMTPConfig, log logger.Logger) *EmailNotifier {
	return NewEmailNotifierWithSender(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass), log)
}

// NewEmailNotifierWithSender creates a notifier using sender.
func NewEmailNotifierWithSender(from string, sender Sender, log logger.Logger) *EmailNotifier {
	if log == nil {
		log = logger.Discard()
	}
	return &EmailNotifier{from: from, sender: sender, log: log}
}

// SendResetCode implements Notifier.
func (n *EmailNotifier) SendResetCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	if strings.TrimSpace(toEmail) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[pricewise] Password reset code")
	m.SetBody("text/plain", resetBody(code, ttl))
	m.AddAlternative("text/html", resetHTML(code, ttl))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.log.Info(ctx, "reset code sent", logger.String("to", toEmail))
	return nil
}

func resetBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}

func resetHTML(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password reset</h2>
    <p>Your reset code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in %d minutes.</p>
  </div>
</body>
</html>`, code, int(ttl.Minutes()))
}

// LogNotifier writes reset codes to the log. Used when SMTP is not configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Discard()
	}
	return &LogNotifier{log: log}
}

// SendResetCode implements Notifier.
func (n *LogNotifier) SendResetCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	if strings.TrimSpace(toEmail) == "" {
		return ErrNoRecipient
	}
	n.log.Warn(ctx, "smtp not configured, reset code logged instead",
		logger.String("to", toEmail),
		logger.String("code", code),
		logger.Duration("ttl", ttl),
	)
	return nil
}

// New picks the email notifier when cfg is usable and the log notifier otherwise.
func New(cfg SMTPConfig, log logger.Logger) Notifier {
	if cfg.Enabled() {
		return NewEmailNotifier(cfg, log)
	}
	return NewLogNotifier(log)
}
