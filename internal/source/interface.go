package source

import (
	"context"

	"github.com/jimezsa/imagemail/internal/models"
)

// Source searches a remote image index.
type Source interface {
	Name() string
	Search(ctx context.Context, params models.SearchParams) ([]Handle, error)
}

// Handle references one search result. Its bytes are only fetched by
// Download, and a handle is meant to be downloaded once.
type Handle interface {
	Image() models.Image
	Download(ctx context.Context) ([]byte, error)
}

// Fetcher downloads a URL into memory.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
