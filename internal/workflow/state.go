package workflow

import "github.com/jimezsa/imagemail/internal/models"

type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateSearching   State = "searching"
	StateDownloading State = "downloading"
	StateArchiving   State = "archiving"
	StateSending     State = "sending"
	StateDone        State = "done"
	StateError       State = "error"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// Event is what a run reports to the shell, which is the only writer to the
// terminal. Err is set only on StateError, Result only on StateDone. Warning
// is set on the event reporting a skipped download.
type Event struct {
	State    State
	Progress models.Progress
	Status   string
	Warning  string
	Skipped  int
	Err      error
	Result   *Result
}

// Result summarizes a completed run.
type Result struct {
	Requested   int
	Delivered   int
	Skipped     int
	Recipient   string
	ArchiveSize int
	Entries     []string
	Archive     []byte
}

// StatusMessage is the final status line of a successful run.
func (r Result) StatusMessage() string {
	if r.Delivered == r.Requested {
		return sentMessage(r.Requested, r.Recipient)
	}
	return partialMessage(r.Delivered, r.Requested, r.Recipient)
}
