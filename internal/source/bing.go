package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/imagemail/internal/models"
	"github.com/jimezsa/imagemail/internal/network"
)

const (
	bingPageSize = 35
	bingMaxPages = 6
)

// Bing scrapes the Bing image results page. It needs no API key.
type Bing struct {
	client *network.Client
}

func NewBing(client *network.Client) *Bing {
	return &Bing{client: client}
}

func (b *Bing) Name() string {
	return SiteBing
}

func (b *Bing) Search(ctx context.Context, params models.SearchParams) ([]Handle, error) {
	var handles []Handle
	seen := map[string]struct{}{}

	for page := 0; page < bingMaxPages && len(handles) < params.Count; page++ {
		doc, err := fetchDocument(ctx, b.client, buildBingURL(params, page*bingPageSize+1), nil)
		if err != nil {
			return nil, &SearchError{Source: SiteBing, Err: err}
		}

		added := 0
		for _, image := range parseBingImages(doc) {
			if !matchesFileType(image.URL, params.Filters.FileType) {
				continue
			}
			if _, ok := seen[image.URL]; ok {
				continue
			}
			seen[image.URL] = struct{}{}
			handles = append(handles, newHandle(image, b.client))
			added++
			if len(handles) >= params.Count {
				break
			}
		}
		if added == 0 {
			break
		}
	}

	return handles, nil
}

func buildBingURL(params models.SearchParams, first int) string {
	values := url.Values{}
	values.Set("q", params.Query)
	values.Set("first", fmt.Sprintf("%d", first))
	values.Set("count", fmt.Sprintf("%d", bingPageSize))
	values.Set("adlt", bingAdult(params.Filters.Safety))
	values.Set("mmasync", "1")

	filters := []string{"filterui:photo-photo"}
	if size := bingSize(params.Filters.Size); size != "" {
		filters = append(filters, "filterui:imagesize-"+size)
	}
	values.Set("qft", "+"+strings.Join(filters, "+"))

	return "https://www.bing.com/images/async?" + values.Encode()
}

type bingMeta struct {
	MediaURL string `json:"murl"`
	PageURL  string `json:"purl"`
	Title    string `json:"t"`
}

func parseBingImages(doc *goquery.Document) []models.Image {
	var images []models.Image
	doc.Find("a.iusc").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.AttrOr("m", ""))
		if raw == "" {
			return
		}
		var meta bingMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return
		}
		link := absoluteURL("https://www.bing.com", meta.MediaURL)
		if link == "" {
			return
		}
		images = append(images, models.Image{
			Source:     SiteBing,
			Title:      cleanText(meta.Title),
			URL:        link,
			ContextURL: meta.PageURL,
		})
	})
	return images
}

func bingSize(size string) string {
	switch strings.ToLower(strings.TrimSpace(size)) {
	case "icon", "small":
		return "small"
	case "medium":
		return "medium"
	case "large":
		return "large"
	case "xlarge", "xxlarge", "huge":
		return "wallpaper"
	default:
		return ""
	}
}

func bingAdult(safety string) string {
	switch strings.ToLower(strings.TrimSpace(safety)) {
	case "off", "none":
		return "off"
	case "medium", "moderate":
		return "moderate"
	default:
		return "strict"
	}
}
