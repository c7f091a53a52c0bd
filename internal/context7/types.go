// Package context7 implements the HTTP client for the Context7 documentation
// API. The client owns a lazily created, reusable session, authenticates with
// an optional bearer token, retries rate-limited requests with exponential
// backoff, and normalizes the service's loosely structured response envelopes
// into flat snippet lists.
package context7

// Snippet is one documentation excerpt returned by the context endpoint.
type Snippet struct {
	// Title is the display heading of the excerpt. May be empty; renderers
	// substitute a placeholder.
	Title string `json:"title"`

	// Content is the body text. May contain markdown code fences.
	Content string `json:"content"`

	// Source is the originating URL, when the service provides one.
	Source string `json:"source,omitempty"`

	// Library is the upstream library ID this snippet was fetched from.
	// It is not part of the wire format — callers that fan out across
	// several libraries set it when collecting results.
	Library string `json:"-"`
}

// Library is one library descriptor returned by the search endpoint.
type Library struct {
	// ID is the upstream library identifier (e.g. "/openhands/openhands").
	ID string `json:"id"`

	// Title is the human-readable library name.
	Title string `json:"title"`

	// Description summarises the library's documentation set.
	Description string `json:"description,omitempty"`
}

// ResponseType selects the body format of a context fetch.
type ResponseType string

const (
	// ResponseJSON requests a structured snippet list.
	ResponseJSON ResponseType = "json"

	// ResponseText requests the raw concatenated context as plain text.
	ResponseText ResponseType = "txt"
)
