package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jimezsa/imagemail/internal/archive"
	"github.com/jimezsa/imagemail/internal/models"
	"github.com/jimezsa/imagemail/internal/ui"
	"github.com/jimezsa/imagemail/internal/workflow"
)

type SendCmd struct {
	Query   string `arg:"" optional:"" help:"Image search query. Prompted for when omitted on a terminal."`
	Count   string `short:"n" help:"Number of images to send."`
	To      string `short:"t" help:"Recipient email address."`
	Source  string `help:"Image source: google, bing." env:"IMAGEMAIL_SOURCE"`
	Strict  bool   `help:"Fail instead of mailing an empty archive when every download fails."`
	Keep    string `help:"Also write the archive to this path."`
	Proxies string `help:"Comma-separated proxy URLs." env:"IMAGEMAIL_PROXIES"`
}

type sendSummary struct {
	Status       string   `json:"status"`
	Requested    int      `json:"requested"`
	Delivered    int      `json:"delivered"`
	Skipped      int      `json:"skipped"`
	Recipient    string   `json:"recipient"`
	ArchiveBytes int      `json:"archive_bytes"`
	Entries      []string `json:"entries"`
	KeptAt       string   `json:"kept_at,omitempty"`
}

func (s *SendCmd) Run(ctx *Context) error {
	form, err := s.collectForm(ctx)
	if err != nil {
		return err
	}

	// Bad input never reaches the network, not even to open clients.
	if _, err := workflow.Validate(form, ctx.Config.MaxCount); err != nil {
		ctx.UI.Alert(workflow.ErrorTitle(err), "%v", err)
		return &ReportedError{Err: err}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	searcher, err := ctx.openSource(runCtx, firstNonEmpty(s.Source, ctx.Config.Source), s.Proxies)
	if err != nil {
		return fmt.Errorf("open image source: %w", err)
	}
	sender, err := ctx.openSender()
	if err != nil {
		return fmt.Errorf("open mailer: %w", err)
	}

	opts := workflow.Options{
		Filters:    filtersFromConfig(ctx.Config),
		MaxCount:   ctx.Config.MaxCount,
		AllowEmpty: ctx.Config.AllowEmpty && !s.Strict,
		Filename:   archive.DefaultFilename,
	}
	runner := workflow.NewRunner(func() *workflow.Controller {
		return workflow.NewController(searcher, sender, ctx.Logger, opts)
	})

	events, err := runner.Submit(runCtx, form)
	if err != nil {
		return err
	}

	result, err := renderEvents(ctx, events)
	if err != nil {
		return err
	}
	return s.report(ctx, result)
}

func (s *SendCmd) collectForm(ctx *Context) (models.Form, error) {
	form := models.Form{Query: s.Query, Count: s.Count, Recipient: s.To}
	if !ctx.Interactive || ctx.In == nil || ctx.JSONOutput {
		return form, nil
	}

	prompter := ui.NewPrompter(ctx.In, ctx.Err)
	var err error
	if form.Query, err = prompter.Ask("Image Search Topic", form.Query); err != nil {
		return form, err
	}
	if form.Count, err = prompter.Ask("Number of Images", form.Count); err != nil {
		return form, err
	}
	if form.Recipient, err = prompter.Ask("Your Email Address", form.Recipient); err != nil {
		return form, err
	}
	return form, nil
}

// renderEvents is the shell side of a run: it is the only writer to the
// terminal while the run goroutine works.
func renderEvents(ctx *Context, events <-chan workflow.Event) (*workflow.Result, error) {
	bar := ui.NewProgressBar(ctx.Err, isTTY(ctx.Err) && !ctx.JSONOutput, ctx.UI != nil && ctx.UI.ColorEnabled)

	var (
		result *workflow.Result
		runErr error
	)
	for ev := range events {
		switch ev.State {
		case workflow.StateDone:
			bar.Update(ev.Status, ev.Progress.Percent())
			bar.Finish()
			result = ev.Result
		case workflow.StateError:
			bar.Finish()
			runErr = ev.Err
			ctx.UI.Alert(workflow.ErrorTitle(ev.Err), "%s", alertMessage(ev.Err))
		default:
			if ev.Warning != "" && ctx.Verbose {
				bar.Finish()
				ctx.UI.Warnf("%s", ev.Warning)
			}
			bar.Update(ev.Status, ev.Progress.Percent())
		}
	}

	if runErr != nil {
		return nil, &ReportedError{Err: runErr}
	}
	if result == nil {
		return nil, errors.New("run ended without a result")
	}
	return result, nil
}

func alertMessage(err error) string {
	switch workflow.ErrorTitle(err) {
	case "Email Error":
		return "An error occurred while sending email: " + err.Error()
	case "API Error":
		return "Error occurred: " + err.Error()
	default:
		return err.Error()
	}
}

func (s *SendCmd) report(ctx *Context, result *workflow.Result) error {
	summary := sendSummary{
		Status:       result.StatusMessage(),
		Requested:    result.Requested,
		Delivered:    result.Delivered,
		Skipped:      result.Skipped,
		Recipient:    result.Recipient,
		ArchiveBytes: result.ArchiveSize,
		Entries:      result.Entries,
	}
	if summary.Entries == nil {
		summary.Entries = []string{}
	}

	if keep := strings.TrimSpace(s.Keep); keep != "" {
		if err := os.WriteFile(keep, result.Archive, 0o644); err != nil {
			return fmt.Errorf("write --keep: %w", err)
		}
		summary.KeptAt = keep
	}

	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	ctx.UI.Successf("%s", summary.Status)
	if summary.Skipped > 0 {
		ctx.UI.Warnf("%d of %d images could not be downloaded", summary.Skipped, summary.Requested)
	}
	if ctx.Verbose {
		for _, entry := range summary.Entries {
			ctx.UI.Infof("  %s", entry)
		}
	}
	if summary.KeptAt != "" {
		ctx.UI.Infof("Archive saved to %s", summary.KeptAt)
	}
	return nil
}
