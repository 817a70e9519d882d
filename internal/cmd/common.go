package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jimezsa/imagemail/internal/config"
	"github.com/jimezsa/imagemail/internal/mailer"
	"github.com/jimezsa/imagemail/internal/models"
	"github.com/jimezsa/imagemail/internal/network"
	"github.com/jimezsa/imagemail/internal/source"
	"github.com/jimezsa/imagemail/internal/ui"
	"github.com/jimezsa/imagemail/internal/workflow"
	"github.com/muesli/termenv"
)

// ReportedError is an error the command already showed to the user.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}

func (c *Context) openSource(ctx context.Context, name string, proxies string) (source.Source, error) {
	if c.OpenSource != nil {
		return c.OpenSource(ctx, name, proxies)
	}
	client, err := newHTTPClient(c.Config, proxies)
	if err != nil {
		return nil, err
	}
	return source.Open(ctx, name, source.Settings{
		Google: source.GoogleOptions{
			APIKey:   c.Config.Google.APIKey,
			EngineID: c.Config.Google.EngineID,
			Endpoint: c.Config.Google.Endpoint,
		},
	}, client)
}

func (c *Context) openSender() (workflow.Sender, error) {
	if c.OpenSender != nil {
		return c.OpenSender()
	}
	smtp := c.Config.SMTP
	notifier, err := mailer.New(mailer.Options{
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
		From:     smtp.Sender(),
		Subject:  smtp.Subject,
		Body:     smtp.Body,
		Timeout:  smtp.TimeoutDuration(),
	})
	if err != nil {
		return nil, err
	}
	return notifier, nil
}

func newHTTPClient(cfg config.Config, proxiesFlag string) (*network.Client, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}

	return network.NewClient(rotator, network.Options{
		Timeout:  cfg.DownloadTimeoutDuration(),
		MaxBytes: cfg.MaxImageBytes,
	})
}

func filtersFromConfig(cfg config.Config) models.Filters {
	return models.Filters{
		FileType: cfg.FileType,
		Size:     cfg.ImageSize,
		Safety:   cfg.Safety,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	if f, ok := out.(*os.File); ok {
		return ui.IsInteractive(f)
	}
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
