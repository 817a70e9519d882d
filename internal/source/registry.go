package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/imagemail/internal/network"
)

const (
	SiteGoogle = "google"
	SiteBing   = "bing"
)

// Settings carries what individual sources need beyond the HTTP client.
type Settings struct {
	Google GoogleOptions
}

func Names() []string {
	return []string{SiteGoogle, SiteBing}
}

// Open builds the named source. Image downloads of every source go
// through client.
func Open(ctx context.Context, name string, settings Settings, client *network.Client) (Source, error) {
	switch NormalizeName(name) {
	case SiteGoogle:
		google, err := NewGoogle(ctx, settings.Google, client)
		if err != nil {
			return nil, err
		}
		return google, nil
	case SiteBing:
		return NewBing(client), nil
	default:
		return nil, fmt.Errorf("unknown source: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
}

func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "www.")
	switch name {
	case "", "gis", "google-images", "google.com":
		return SiteGoogle
	case "bing.com", "bing-images":
		return SiteBing
	default:
		return name
	}
}
