package models

// Image is the metadata of one search result.
type Image struct {
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url"`
	ContextURL string `json:"context_url,omitempty"`
	MIME       string `json:"mime,omitempty"`
	Width      int64  `json:"width,omitempty"`
	Height     int64  `json:"height,omitempty"`
}
