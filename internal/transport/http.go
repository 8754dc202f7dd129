package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPDoer executes requests with net/http.
type HTTPDoer struct {
	Client *http.Client
}

// NewHTTPDoer creates a doer. A zero timeout leaves requests unbounded.
func NewHTTPDoer(timeout time.Duration) *HTTPDoer {
	return &HTTPDoer{
		Client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDoer) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

// Do implements Doer
func (d *HTTPDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := withPort(req.URL, req.Port)
	if err != nil {
		return nil, &Error{Kind: ProtocolError, Detail: "invalid url " + req.URL, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, nil)
	if err != nil {
		return nil, &Error{Kind: ProtocolError, Detail: "build request", Err: err}
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	httpResp, err := d.client().Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer httpResp.Body.Close()

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		ContentLength: httpResp.ContentLength,
	}
	if req.NoBody {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return resp, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: ProtocolError, Detail: "read body", Err: err}
	}
	resp.Body = body
	return resp, nil
}

// withPort replaces the port of rawURL when port is set.
func withPort(rawURL string, port int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("url must be absolute")
	}
	if port > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	return u.String(), nil
}

func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: ConnectFailed, Detail: "resolve host", Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: ConnectFailed, Detail: "dial", Err: err}
	}
	return &Error{Kind: ProtocolError, Err: err}
}
