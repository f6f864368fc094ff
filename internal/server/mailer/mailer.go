// Package mailer delivers account mail. The server never waits for actual
// delivery: implementations hand the message to a console or an outbox and
// return.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

var errHeaderInjection = errors.New("mail header contains a line break")

func checkHeader(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return errHeaderInjection
		}
	}
	return nil
}

// New builds the Mailer selected by cfg.Mailer.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (Mailer, error) {
	switch cfg.Mailer {
	case "", config.MailerLog:
		return NewLogMailer(os.Stdout, cfg.MailFrom, log), nil
	case config.MailerS3:
		return NewS3OutboxMailer(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown mailer %q", cfg.Mailer)
	}
}

// LogMailer prints messages to a writer (stdout in development). Only the
// recipient and subject go to the structured log.
type LogMailer struct {
	w    io.Writer
	from string
	log  logging.Logger
}

func NewLogMailer(w io.Writer, from string, log logging.Logger) *LogMailer {
	return &LogMailer{w: w, from: from, log: log.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := checkHeader(to, subject); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(m.w, "From: %s\nTo: %s\nSubject: %s\n\n%s\n", m.from, to, subject, body); err != nil {
		return fmt.Errorf("write mail: %w", err)
	}
	m.log.Info(ctx, "mail printed", "to", to, "subject", subject)
	return nil
}
