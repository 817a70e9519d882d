package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const zipContentType mail.ContentType = "application/zip"

// EmailError is any failure to compose or deliver the message. Its text
// carries the transport's own message.
type EmailError struct {
	Op  string
	Err error
}

func (e *EmailError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EmailError) Unwrap() error { return e.Err }

// Dialer delivers composed messages. *mail.Client implements it.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
	Body     string
	Timeout  time.Duration
}

// Notifier mails an archive to a recipient over an authenticated STARTTLS
// session.
type Notifier struct {
	opts   Options
	dialer Dialer
}

func New(opts Options) (*Notifier, error) {
	if strings.TrimSpace(opts.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(opts.Username) == "" || opts.Password == "" {
		return nil, errors.New("smtp credentials are required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	port := opts.Port
	if port <= 0 {
		port = 587
	}

	client, err := mail.NewClient(opts.Host,
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return NewWithDialer(opts, client), nil
}

func NewWithDialer(opts Options, dialer Dialer) *Notifier {
	if strings.TrimSpace(opts.From) == "" {
		opts.From = opts.Username
	}
	if opts.Subject == "" {
		opts.Subject = "Downloaded Images"
	}
	if opts.Body == "" {
		opts.Body = "Here are the images you requested in a ZIP file."
	}
	return &Notifier{opts: opts, dialer: dialer}
}

// Compose builds the message: a plain-text body and the archive attached
// as filename.
func (n *Notifier) Compose(recipient string, archive []byte, filename string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.opts.From); err != nil {
		return nil, fmt.Errorf("sender %q: %w", n.opts.From, err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", recipient, err)
	}
	m.Subject(n.opts.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, n.opts.Body)

	if err := m.AttachReader(filename, bytes.NewReader(archive), mail.WithFileContentType(zipContentType)); err != nil {
		return nil, fmt.Errorf("attach %s: %w", filename, err)
	}
	return m, nil
}

// Send composes and transmits synchronously. Nothing is retried.
func (n *Notifier) Send(ctx context.Context, recipient string, archive []byte, filename string) error {
	m, err := n.Compose(recipient, archive, filename)
	if err != nil {
		return &EmailError{Op: "compose", Err: err}
	}
	if err := n.dialer.DialAndSendWithContext(ctx, m); err != nil {
		return &EmailError{Op: "send", Err: err}
	}
	return nil
}
