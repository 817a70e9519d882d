package source

import (
	"context"
	"errors"

	"github.com/jimezsa/imagemail/internal/models"
)

type remoteHandle struct {
	image   models.Image
	fetcher Fetcher
}

func newHandle(image models.Image, fetcher Fetcher) Handle {
	return &remoteHandle{image: image, fetcher: fetcher}
}

func (h *remoteHandle) Image() models.Image {
	return h.image
}

func (h *remoteHandle) Download(ctx context.Context) ([]byte, error) {
	if h.fetcher == nil {
		return nil, &DownloadError{URL: h.image.URL, Err: errors.New("no fetcher configured")}
	}
	data, err := h.fetcher.Fetch(ctx, h.image.URL)
	if err != nil {
		return nil, &DownloadError{URL: h.image.URL, Err: err}
	}
	return data, nil
}
