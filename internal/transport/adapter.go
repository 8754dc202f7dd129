package transport

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// ServiceIDHeader identifies the caller to the blob store on every request.
const ServiceIDHeader = "x-ambry-service-id"

// DefaultServiceID is sent when no service id is configured
const DefaultServiceID = "ambryfs"

// Adapter builds blob store requests and runs them through a Doer.
type Adapter struct {
	baseURL   string
	port      int
	serviceID string
	doer      Doer
}

// NewAdapter creates an adapter for the store at baseURL:port.
func NewAdapter(baseURL string, port int, serviceID string, doer Doer) *Adapter {
	if serviceID == "" {
		serviceID = DefaultServiceID
	}
	return &Adapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		port:      port,
		serviceID: serviceID,
		doer:      doer,
	}
}

// NewRequest builds the request Execute would send. The blob path is escaped
// as a single segment, so '#', '?' and '%' stay part of the id.
func (a *Adapter) NewRequest(method, blobPath string, opts Options) *Request {
	return &Request{
		Method:   method,
		URL:      a.baseURL + "/" + url.PathEscape(strings.TrimPrefix(blobPath, "/")),
		Port:     a.port,
		Headers:  []Header{{Name: ServiceIDHeader, Value: a.serviceID}},
		BlobPath: blobPath,
		NoBody:   opts.NoBody || method == MethodHead,
	}
}

// Execute sends method for blobPath. A response with any status code is
// returned as-is; only failures that produced no status are errors.
func (a *Adapter) Execute(ctx context.Context, method, blobPath string, opts Options) (*Response, error) {
	req := a.NewRequest(method, blobPath, opts)
	log := logrus.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL,
		"port":   req.Port,
	})
	log.Debug("blob store request")

	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		var terr *Error
		if !errors.As(err, &terr) {
			err = &Error{Kind: ProtocolError, Err: err}
		}
		log.WithError(err).Warn("blob store request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status":         resp.StatusCode,
		"content_length": resp.ContentLength,
		"body_bytes":     len(resp.Body),
	}).Debug("blob store response")
	return resp, nil
}
