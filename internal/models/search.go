package models

// Filters narrows an image search.
type Filters struct {
	FileType string `json:"file_type"`
	Size     string `json:"size"`
	Safety   string `json:"safety"`
}

// SearchParams captures the normalized search inputs used by image sources.
type SearchParams struct {
	Query   string
	Count   int
	Filters Filters
}

// Form is the raw input collected by the shell, before validation.
type Form struct {
	Query     string
	Count     string
	Recipient string
}

// SearchRequest is a validated Form.
type SearchRequest struct {
	Query     string
	Count     int
	Recipient string
}
