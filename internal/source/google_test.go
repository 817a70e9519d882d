package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jimezsa/imagemail/internal/models"
)

type fakeFetcher struct {
	fail map[string]error
}

func (f fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	return []byte("bytes:" + url), nil
}

type recordedCall struct {
	start, num                         int
	q, cx, key, searchType, safe, size string
	fileType                           string
}

func newGoogleServer(t *testing.T, total int) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/customsearch/v1") {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))
		mu.Lock()
		calls = append(calls, recordedCall{
			start: start, num: num,
			q: q.Get("q"), cx: q.Get("cx"), key: q.Get("key"),
			searchType: q.Get("searchType"), safe: q.Get("safe"),
			size: q.Get("imgSize"), fileType: q.Get("fileType"),
		})
		mu.Unlock()

		var items []map[string]any
		for i := start; i < start+num && i <= total; i++ {
			items = append(items, map[string]any{
				"title": fmt.Sprintf("cat &amp; %d", i),
				"link":  fmt.Sprintf("https://img.example.com/%d.jpg", i),
				"mime":  "image/jpeg",
				"image": map[string]any{"contextLink": "https://example.com/page", "width": 640, "height": 480},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGoogleSearchPagesAndMapsFilters(t *testing.T) {
	srv, calls := newGoogleServer(t, 100)
	g, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "key", EngineID: "cx", Endpoint: srv.URL + "/"}, fakeFetcher{})
	if err != nil {
		t.Fatalf("NewGoogle() error = %v", err)
	}

	handles, err := g.Search(context.Background(), models.SearchParams{
		Query:   "cats",
		Count:   15,
		Filters: models.Filters{FileType: "jpg", Size: "medium", Safety: "high"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(handles) != 15 {
		t.Fatalf("len(handles) = %d, want 15", len(handles))
	}
	if len(*calls) != 2 {
		t.Fatalf("expected 2 API calls, got %d", len(*calls))
	}

	first, second := (*calls)[0], (*calls)[1]
	if first.start != 1 || first.num != 10 || second.start != 11 || second.num != 5 {
		t.Fatalf("unexpected paging: %+v / %+v", first, second)
	}
	if first.q != "cats" || first.cx != "cx" || first.key != "key" {
		t.Fatalf("unexpected identity params: %+v", first)
	}
	if first.searchType != "image" || first.safe != "active" || first.size != "MEDIUM" || first.fileType != "jpg" {
		t.Fatalf("unexpected filter params: %+v", first)
	}

	image := handles[0].Image()
	if image.URL != "https://img.example.com/1.jpg" || image.Title != "cat & 1" || image.Width != 640 {
		t.Fatalf("unexpected image: %+v", image)
	}
	data, err := handles[0].Download(context.Background())
	if err != nil || string(data) != "bytes:https://img.example.com/1.jpg" {
		t.Fatalf("Download() = %q, %v", data, err)
	}
}

func TestGoogleSearchShortPageStops(t *testing.T) {
	srv, calls := newGoogleServer(t, 3)
	g, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "key", EngineID: "cx", Endpoint: srv.URL + "/"}, fakeFetcher{})
	if err != nil {
		t.Fatalf("NewGoogle() error = %v", err)
	}

	handles, err := g.Search(context.Background(), models.SearchParams{Query: "rare", Count: 8})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(handles) != 3 || len(*calls) != 1 {
		t.Fatalf("handles=%d calls=%d, want 3 and 1", len(handles), len(*calls))
	}
}

func TestGoogleSearchCapsAtAPIWindow(t *testing.T) {
	srv, calls := newGoogleServer(t, 500)
	g, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "key", EngineID: "cx", Endpoint: srv.URL + "/"}, fakeFetcher{})
	if err != nil {
		t.Fatalf("NewGoogle() error = %v", err)
	}

	handles, err := g.Search(context.Background(), models.SearchParams{Query: "many", Count: 250})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(handles) != googleMaxResults {
		t.Fatalf("len(handles) = %d, want %d", len(handles), googleMaxResults)
	}
	last := (*calls)[len(*calls)-1]
	if last.start+last.num-1 > googleMaxResults {
		t.Fatalf("request beyond API window: %+v", last)
	}
}

func TestGoogleSearchErrorIsSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid"}}`))
	}))
	defer srv.Close()

	g, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "bad", EngineID: "cx", Endpoint: srv.URL + "/"}, fakeFetcher{})
	if err != nil {
		t.Fatalf("NewGoogle() error = %v", err)
	}
	_, err = g.Search(context.Background(), models.SearchParams{Query: "cats", Count: 1})
	var searchErr *SearchError
	if !errors.As(err, &searchErr) {
		t.Fatalf("Search() error = %v, want *SearchError", err)
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("error should carry the API message: %v", err)
	}
}

func TestNewGoogleRequiresCredentials(t *testing.T) {
	if _, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "key"}, nil); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("NewGoogle() error = %v, want ErrMissingCredentials", err)
	}
}

func TestHandleDownloadWrapsError(t *testing.T) {
	boom := errors.New("connection reset")
	h := newHandle(models.Image{URL: "https://img.example.com/x.jpg"}, fakeFetcher{fail: map[string]error{"https://img.example.com/x.jpg": boom}})

	_, err := h.Download(context.Background())
	var downloadErr *DownloadError
	if !errors.As(err, &downloadErr) || !errors.Is(err, boom) {
		t.Fatalf("Download() error = %v, want *DownloadError wrapping cause", err)
	}
}

func TestGoogleFilterMapping(t *testing.T) {
	if got := googleSafe("off"); got != "off" {
		t.Fatalf("googleSafe(off) = %q", got)
	}
	if got := googleSafe("high"); got != "active" {
		t.Fatalf("googleSafe(high) = %q", got)
	}
	if got := googleImgSize(" large "); got != "LARGE" {
		t.Fatalf("googleImgSize(large) = %q", got)
	}
}
