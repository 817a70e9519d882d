package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/imagemail/internal/archive"
	"github.com/jimezsa/imagemail/internal/models"
	"github.com/jimezsa/imagemail/internal/source"
	"github.com/rs/zerolog"
)

// Searcher finds image handles. Every source.Source is a Searcher.
type Searcher interface {
	Search(ctx context.Context, params models.SearchParams) ([]source.Handle, error)
}

// Sender delivers a finished archive.
type Sender interface {
	Send(ctx context.Context, recipient string, archive []byte, filename string) error
}

type Options struct {
	Filters  models.Filters
	MaxCount int
	// AllowEmpty sends an empty archive when every download failed instead
	// of ending the run with ErrNoImages.
	AllowEmpty bool
	Filename   string
}

// Controller drives a single run through its states. Use a new Controller
// for every run.
type Controller struct {
	searcher Searcher
	sender   Sender
	logger   zerolog.Logger
	opts     Options

	state    State
	progress models.Progress
	skipped  int
	emit     func(Event)
}

func NewController(searcher Searcher, sender Sender, logger zerolog.Logger, opts Options) *Controller {
	if opts.Filename == "" {
		opts.Filename = archive.DefaultFilename
	}
	return &Controller{
		searcher: searcher,
		sender:   sender,
		logger:   logger,
		opts:     opts,
		state:    StateIdle,
	}
}

func (c *Controller) State() State {
	return c.state
}

// Run validates form, then searches, downloads, archives and sends. Every
// transition is reported through emit, ending with exactly one StateDone or
// StateError event.
func (c *Controller) Run(ctx context.Context, form models.Form, emit func(Event)) (*Result, error) {
	if c.state != StateIdle {
		return nil, fmt.Errorf("controller already used (state %s)", c.state)
	}
	if emit == nil {
		emit = func(Event) {}
	}
	c.emit = emit

	c.transition(StateValidating, "Validating input...")
	req, err := Validate(form, c.opts.MaxCount)
	if err != nil {
		return nil, c.fail(err)
	}

	c.progress = models.Progress{Completed: 0, Total: req.Count}
	c.transition(StateSearching, "Searching and sending images...")
	if err := ctx.Err(); err != nil {
		return nil, c.fail(err)
	}
	handles, err := c.searcher.Search(ctx, models.SearchParams{
		Query:   req.Query,
		Count:   req.Count,
		Filters: c.opts.Filters,
	})
	if err != nil {
		return nil, c.fail(err)
	}
	if len(handles) > req.Count {
		handles = handles[:req.Count]
	}
	c.logger.Debug().Str("query", req.Query).Int("requested", req.Count).Int("found", len(handles)).Msg("search complete")

	c.transition(StateDownloading, fmt.Sprintf("Downloading %d images...", len(handles)))
	builder := archive.NewBuilder()
	ext := entryExt(c.opts.Filters.FileType)
	var entries []string
	for i, handle := range handles {
		if err := ctx.Err(); err != nil {
			return nil, c.fail(err)
		}
		index := i + 1
		if err := c.collect(ctx, builder, handle, archive.EntryName(req.Query, index, ext), index); err != nil {
			c.skipped++
			c.emit(Event{
				State:    c.state,
				Progress: c.progress,
				Status:   fmt.Sprintf("Skipped image %d", index),
				Warning:  fmt.Sprintf("image %d could not be downloaded: %v", index, err),
				Skipped:  c.skipped,
			})
			continue
		}
		entries = append(entries, archive.EntryName(req.Query, index, ext))
		c.progress.Completed++
		c.emitState(fmt.Sprintf("Downloaded %d of %d images", c.progress.Completed, c.progress.Total))
	}
	if err := ctx.Err(); err != nil {
		return nil, c.fail(err)
	}

	c.transition(StateArchiving, "Creating archive...")
	if builder.Len() == 0 && !c.opts.AllowEmpty {
		return nil, c.fail(ErrNoImages)
	}
	data, err := builder.Finalize()
	if err != nil {
		return nil, c.fail(err)
	}

	c.transition(StateSending, fmt.Sprintf("Sending %d images to %s...", builder.Len(), req.Recipient))
	if err := c.sender.Send(ctx, req.Recipient, data, c.opts.Filename); err != nil {
		return nil, c.fail(err)
	}

	result := &Result{
		Requested:   req.Count,
		Delivered:   builder.Len(),
		Skipped:     c.skipped,
		Recipient:   req.Recipient,
		ArchiveSize: len(data),
		Entries:     entries,
		Archive:     data,
	}
	c.state = StateDone
	c.logger.Debug().Int("requested", result.Requested).Int("delivered", result.Delivered).Int("archive_bytes", result.ArchiveSize).Msg("run complete")
	c.emit(Event{State: StateDone, Progress: c.progress, Status: result.StatusMessage(), Skipped: c.skipped, Result: result})
	return result, nil
}

// collect downloads one handle into the archive. The image bytes go out of
// scope once added. Failures are returned for the shell to report.
func (c *Controller) collect(ctx context.Context, builder *archive.Builder, handle source.Handle, name string, index int) error {
	image := handle.Image()
	data, err := handle.Download(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Int("index", index).Str("url", image.URL).Msg("image download failed, skipping")
		return err
	}
	if err := builder.Add(name, data); err != nil {
		c.logger.Debug().Err(err).Int("index", index).Str("entry", name).Msg("archive add failed, skipping")
		return err
	}
	return nil
}

func (c *Controller) transition(next State, status string) {
	c.logger.Debug().Str("from", string(c.state)).Str("to", string(next)).Msg("workflow transition")
	c.state = next
	c.emitState(status)
}

func (c *Controller) emitState(status string) {
	c.emit(Event{State: c.state, Progress: c.progress, Status: status})
}

func (c *Controller) fail(err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		c.logger.Debug().Str("field", validationErr.Field).Msg("input rejected")
	} else {
		c.logger.Debug().Err(err).Str("state", string(c.state)).Msg("run failed")
	}
	c.state = StateError
	c.emit(Event{State: StateError, Progress: c.progress, Status: err.Error(), Err: err})
	return err
}

func entryExt(fileType string) string {
	fileType = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
	switch fileType {
	case "", "jpeg":
		return "jpg"
	default:
		return fileType
	}
}
