// Package mail delivers the one-time codes for account verification and
// password resets.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends transactional mail.
type Mailer interface {
	// SendVerifyCode delivers an account verification code.
	SendVerifyCode(ctx context.Context, to, name, code string) error
	// SendResetCode delivers a password reset code.
	SendResetCode(ctx context.Context, to, name, code string) error
}

// SMTP sends mail through a plain SMTP relay.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTP constructs an SMTP mailer. user may be empty for relays that do
// not authenticate.
func NewSMTP(addr, from, user, password string) *SMTP {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTP{addr: addr, from: from, auth: auth}
}

// SendVerifyCode delivers an account verification code.
func (m *SMTP) SendVerifyCode(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour verification code is %s.\r\nIt expires in 15 minutes.\r\n",
		name, code)
	return m.send(ctx, to, "Verify your account", body)
}

// SendResetCode delivers a password reset code.
func (m *SMTP) SendResetCode(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour password reset code is %s.\r\nIt expires in 15 minutes.\r\nIf you did not request this, ignore this mail.\r\n",
		name, code)
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTP) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// Log is a development mailer that writes codes to the log instead of
// sending anything.
type Log struct{ logger *zap.Logger }

// NewLog constructs a logging mailer.
func NewLog(logger *zap.Logger) *Log { return &Log{logger: logger} }

// SendVerifyCode logs a verification code.
func (m *Log) SendVerifyCode(ctx context.Context, to, name, code string) error {
	m.logger.Info("verification code issued", zap.String("to", to), zap.String("code", code))
	return nil
}

// SendResetCode logs a reset code.
func (m *Log) SendResetCode(ctx context.Context, to, name, code string) error {
	m.logger.Info("reset code issued", zap.String("to", to), zap.String("code", code))
	return nil
}
