package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/imagemail/internal/mailer"
	"github.com/jimezsa/imagemail/internal/source"
)

const (
	msgInvalidCount  = "Please enter a valid number for the number of images."
	msgMissingFields = "Please fill in all fields."
	msgInvalidEmail  = "Please enter a valid email address."
)

var (
	ErrNoImages      = errors.New("no images could be downloaded")
	ErrRunInProgress = errors.New("a run is already in progress")
)

// ValidationError is bad or missing input. A run that fails validation
// never touches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func sentMessage(count int, recipient string) string {
	return fmt.Sprintf("Sent %d images to %s", count, recipient)
}

func partialMessage(delivered, requested int, recipient string) string {
	return fmt.Sprintf("Sent %d of %d images to %s", delivered, requested, recipient)
}

// ErrorTitle is the alert title the shell shows for err.
func ErrorTitle(err error) string {
	var (
		validationErr *ValidationError
		searchErr     *source.SearchError
		emailErr      *mailer.EmailError
	)
	switch {
	case errors.As(err, &validationErr):
		return "Input Error"
	case errors.As(err, &searchErr):
		return "API Error"
	case errors.As(err, &emailErr):
		return "Email Error"
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return "Error"
	}
}
