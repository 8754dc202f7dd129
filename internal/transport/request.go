package transport

import "context"

// Methods used against the blob store.
const (
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodDelete = "DELETE"
)

// Header is a single request header. Requests keep headers in order.
type Header struct {
	Name  string
	Value string
}

// Request is everything needed to issue one call to the blob store.
// It is built fresh for each call and not modified after construction.
type Request struct {
	Method   string
	URL      string
	Port     int
	Headers  []Header
	BlobPath string
	NoBody   bool // body-suppressed metadata probe
}

// Header returns the first value for name, or "".
func (r *Request) Header(name string) string {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// Response is the normalized result of a call that reached the store.
// Any status code, including 4xx and 5xx, is a Response and not an error.
type Response struct {
	StatusCode int
	Body       []byte
	// ContentLength is the declared length, or -1 if the store did not declare one.
	ContentLength int64
}

// Options tunes a single Execute call
type Options struct {
	NoBody bool
}

// Doer is the HTTP capability the adapter executes requests with.
// Implementations return *Error for failures that never produced a status.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}
