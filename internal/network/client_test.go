package network

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientFetch(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 'J', 'F', 'I', 'F'}
	mux := http.NewServeMux()
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/page.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>blocked</html>"))
	})
	mux.HandleFunc("/huge.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, 64))
	})
	mux.HandleFunc("/empty.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	})
	mux.HandleFunc("/dog.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpeg)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(nil, Options{MaxBytes: 16})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	tests := []struct {
		path    string
		wantErr error
	}{
		{path: "/missing.jpg", wantErr: ErrRequestFailed},
		{path: "/page.jpg", wantErr: ErrNotImage},
		{path: "/huge.jpg", wantErr: ErrTooLarge},
		{path: "/empty.jpg", wantErr: ErrEmptyBody},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			data, err := client.Fetch(context.Background(), srv.URL+tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
			if data != nil {
				t.Fatalf("Fetch() returned %d bytes on error", len(data))
			}
		})
	}

	data, err := client.Fetch(context.Background(), srv.URL+"/dog.jpg")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !bytes.Equal(data, jpeg) {
		t.Fatalf("Fetch() = %x, want %x", data, jpeg)
	}
}
