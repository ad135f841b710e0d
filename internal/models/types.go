package models

// CategoryLink is the URL of one category's listing endpoint.
type CategoryLink string

// CategoryPages pairs a category link with its probed page count.
type CategoryPages struct {
	Link       CategoryLink `json:"link"`
	TotalPages int          `json:"totalPages"`
}

type ListingItem struct {
	DetailLink string `json:"detailLink"`
}

// ListingPage is one decoded ajax listing response. NotFound marks a 404,
// which contributes no detail links.
type ListingPage struct {
	Items      []ListingItem `json:"items"`
	TotalPages int           `json:"totalPages"`
	NotFound   bool          `json:"-"`
}

// Outcome is the result of one item in a concurrent batch. Index is the
// submission position of the item.
type Outcome[T any] struct {
	Index int
	URL   string
	Value T
	Err   error
}

// Failure is an Outcome error flattened for reporting.
type Failure struct {
	Stage string `json:"stage"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

type Classification struct {
	Label  string            `json:"label"`
	Reason map[string]string `json:"reason,omitempty"`
}

// DetailPage is the raw markup of one business detail page.
type DetailPage struct {
	URL         string
	ContentType string
	Body        []byte
}
