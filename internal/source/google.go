package source

import (
	"context"
	"strings"

	"github.com/jimezsa/imagemail/internal/models"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	googlePageSize   = 10
	googleMaxResults = 100
)

type GoogleOptions struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// Google searches images through the Custom Search JSON API.
type Google struct {
	svc      *customsearch.Service
	engineID string
	fetcher  Fetcher
}

func NewGoogle(ctx context.Context, opts GoogleOptions, fetcher Fetcher) (*Google, error) {
	if strings.TrimSpace(opts.APIKey) == "" || strings.TrimSpace(opts.EngineID) == "" {
		return nil, ErrMissingCredentials
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &Google{svc: svc, engineID: opts.EngineID, fetcher: fetcher}, nil
}

func (g *Google) Name() string {
	return SiteGoogle
}

func (g *Google) Search(ctx context.Context, params models.SearchParams) ([]Handle, error) {
	want := params.Count
	if want > googleMaxResults {
		want = googleMaxResults
	}

	var handles []Handle
	seen := map[string]struct{}{}
	start := 1
	for len(handles) < want {
		num := googlePageSize
		if remaining := want - len(handles); remaining < num {
			num = remaining
		}
		// The API refuses start+num beyond its 100 result window.
		if start+num-1 > googleMaxResults {
			num = googleMaxResults - start + 1
		}
		if num <= 0 {
			break
		}

		res, err := g.listCall(ctx, params, start, num).Do()
		if err != nil {
			return nil, &SearchError{Source: SiteGoogle, Err: err}
		}

		for _, item := range res.Items {
			if item == nil || item.Link == "" {
				continue
			}
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
			handles = append(handles, newHandle(imageFromGoogle(item), g.fetcher))
			if len(handles) >= want {
				break
			}
		}

		if len(res.Items) < num {
			break
		}
		start += len(res.Items)
	}

	return handles, nil
}

func (g *Google) listCall(ctx context.Context, params models.SearchParams, start, num int) *customsearch.CseListCall {
	call := g.svc.Cse.List().
		Context(ctx).
		Cx(g.engineID).
		Q(params.Query).
		SearchType("image").
		Num(int64(num)).
		Start(int64(start)).
		Safe(googleSafe(params.Filters.Safety))

	if fileType := normalizeFileType(params.Filters.FileType); fileType != "" {
		call = call.FileType(fileType)
	}
	if size := googleImgSize(params.Filters.Size); size != "" {
		call = call.ImgSize(size)
	}
	return call
}

func imageFromGoogle(item *customsearch.Result) models.Image {
	image := models.Image{
		Source: SiteGoogle,
		Title:  cleanText(item.Title),
		URL:    item.Link,
		MIME:   item.Mime,
	}
	if item.Image != nil {
		image.ContextURL = item.Image.ContextLink
		image.Width = item.Image.Width
		image.Height = item.Image.Height
	}
	return image
}

func googleImgSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}

func googleSafe(safety string) string {
	switch strings.ToLower(strings.TrimSpace(safety)) {
	case "off", "none":
		return "off"
	default:
		return "active"
	}
}
