package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/jimezsa/imagemail/internal/models"
	"github.com/rs/zerolog"
)

func TestRunnerRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	searcher := &fakeSearcher{handles: makeHandles(1), block: release}
	sender := &fakeSender{}
	runner := NewRunner(func() *Controller {
		return NewController(searcher, sender, zerolog.Nop(), defaultOptions())
	})
	form := models.Form{Query: "cats", Count: "1", Recipient: "alice@example.com"}

	events, err := runner.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !runner.Busy() {
		t.Fatalf("runner should be busy during a run")
	}
	if _, err := runner.Submit(context.Background(), form); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second Submit() error = %v, want ErrRunInProgress", err)
	}

	close(release)
	var last Event
	for ev := range events {
		last = ev
	}
	if last.State != StateDone || last.Result == nil {
		t.Fatalf("unexpected terminal event: %+v", last)
	}
	if runner.Busy() {
		t.Fatalf("runner should be idle once the event stream closes")
	}

	searcher.block = nil
	events, err = runner.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("Submit() after completion error = %v", err)
	}
	for range events {
	}
}

func TestRunnerReportsValidationErrorAsEvent(t *testing.T) {
	runner := NewRunner(func() *Controller {
		return NewController(&fakeSearcher{}, &fakeSender{}, zerolog.Nop(), defaultOptions())
	})
	events, err := runner.Submit(context.Background(), models.Form{Query: "cats", Count: "abc", Recipient: "alice@example.com"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	var last Event
	for ev := range events {
		last = ev
	}
	var validationErr *ValidationError
	if last.State != StateError || !errors.As(last.Err, &validationErr) {
		t.Fatalf("unexpected terminal event: %+v", last)
	}
}
