package workflow

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/jimezsa/imagemail/internal/models"
)

// Validate turns raw shell input into a SearchRequest. maxCount <= 0 means
// no upper bound. Emptiness is checked before the count is parsed, so an
// empty count reports missing fields rather than an invalid number.
func Validate(form models.Form, maxCount int) (models.SearchRequest, error) {
	query := strings.TrimSpace(form.Query)
	rawCount := strings.TrimSpace(form.Count)
	recipient := strings.TrimSpace(form.Recipient)

	if query == "" || rawCount == "" || recipient == "" {
		return models.SearchRequest{}, &ValidationError{Field: missingField(query, rawCount, recipient), Message: msgMissingFields}
	}

	count, err := strconv.Atoi(rawCount)
	if err != nil || count <= 0 {
		return models.SearchRequest{}, &ValidationError{Field: "count", Message: msgInvalidCount}
	}
	if maxCount > 0 && count > maxCount {
		return models.SearchRequest{}, &ValidationError{
			Field:   "count",
			Message: fmt.Sprintf("Please enter a number between 1 and %d.", maxCount),
		}
	}

	addr, err := mail.ParseAddress(recipient)
	if err != nil {
		return models.SearchRequest{}, &ValidationError{Field: "recipient", Message: msgInvalidEmail}
	}

	return models.SearchRequest{Query: query, Count: count, Recipient: addr.Address}, nil
}

func missingField(query, count, recipient string) string {
	switch {
	case query == "":
		return "query"
	case count == "":
		return "count"
	default:
		return "recipient"
	}
}
