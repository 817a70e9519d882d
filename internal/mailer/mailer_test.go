package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	gomail "github.com/wneessen/go-mail"
)

type fakeDialer struct {
	err  error
	sent []*gomail.Msg
}

func (f *fakeDialer) DialAndSendWithContext(_ context.Context, messages ...*gomail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testOptions() Options {
	return Options{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", Password: "secret"}
}

func TestComposeCarriesBodyAndAttachment(t *testing.T) {
	n := NewWithDialer(testOptions(), &fakeDialer{})
	archive := []byte("PK\x05\x06 zip bytes \x00\x01\x02")

	m, err := n.Compose("alice@example.com", archive, "images.zip")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	var raw bytes.Buffer
	if _, err := m.WriteTo(&raw); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	parsed, err := mail.ReadMessage(&raw)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if got := parsed.Header.Get("Subject"); got != "Downloaded Images" {
		t.Fatalf("Subject = %q", got)
	}
	if got := parsed.Header.Get("To"); !strings.Contains(got, "alice@example.com") {
		t.Fatalf("To = %q", got)
	}
	if got := parsed.Header.Get("From"); !strings.Contains(got, "bot@example.com") {
		t.Fatalf("From = %q", got)
	}

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("Content-Type = %q (%v)", parsed.Header.Get("Content-Type"), err)
	}

	var (
		body       string
		attachment []byte
		filename   string
	)
	mr := multipart.NewReader(parsed.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		if part.FileName() != "" {
			filename = part.FileName()
			var r io.Reader = part
			if strings.EqualFold(part.Header.Get("Content-Transfer-Encoding"), "base64") {
				r = base64.NewDecoder(base64.StdEncoding, part)
			}
			attachment, err = io.ReadAll(r)
			if err != nil {
				t.Fatalf("read attachment: %v", err)
			}
			continue
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		body = string(data)
	}

	if !strings.Contains(body, "Here are the images you requested in a ZIP file.") {
		t.Fatalf("unexpected body: %q", body)
	}
	if filename != "images.zip" {
		t.Fatalf("attachment filename = %q", filename)
	}
	if !bytes.Equal(attachment, archive) {
		t.Fatalf("attachment bytes differ: got %d bytes", len(attachment))
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	rejection := errors.New("535 5.7.8 Username and Password not accepted")
	dialer := &fakeDialer{err: rejection}
	n := NewWithDialer(testOptions(), dialer)

	err := n.Send(context.Background(), "alice@example.com", []byte("zip"), "images.zip")
	var emailErr *EmailError
	if !errors.As(err, &emailErr) {
		t.Fatalf("Send() error = %v, want *EmailError", err)
	}
	if !errors.Is(err, rejection) || !strings.Contains(err.Error(), "Username and Password not accepted") {
		t.Fatalf("transport text not surfaced: %v", err)
	}
	if len(dialer.sent) != 0 {
		t.Fatalf("nothing should be recorded as sent")
	}
}

func TestSendInvalidRecipient(t *testing.T) {
	dialer := &fakeDialer{}
	n := NewWithDialer(testOptions(), dialer)

	err := n.Send(context.Background(), "not an address", []byte("zip"), "images.zip")
	var emailErr *EmailError
	if !errors.As(err, &emailErr) || emailErr.Op != "compose" {
		t.Fatalf("Send() error = %v, want compose EmailError", err)
	}
	if len(dialer.sent) != 0 {
		t.Fatalf("dialer must not be used for an invalid message")
	}
}

func TestSendDelivers(t *testing.T) {
	dialer := &fakeDialer{}
	n := NewWithDialer(testOptions(), dialer)
	if err := n.Send(context.Background(), "alice@example.com", []byte("zip"), "images.zip"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(dialer.sent))
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	opts := testOptions()
	opts.Password = ""
	if _, err := New(opts); err == nil {
		t.Fatalf("expected error for missing password")
	}
}
