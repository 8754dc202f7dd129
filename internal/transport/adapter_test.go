package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDoer struct {
	requests []*Request
	resp     *Response
	err      error
}

func (d *recordingDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	d.requests = append(d.requests, req)
	return d.resp, d.err
}

func TestAdapter_NewRequest(t *testing.T) {
	a := NewAdapter("http://ambry.local/", 1174, "", nil)

	req := a.NewRequest(MethodGet, "AAEAAQ", Options{})
	assert.Equal(t, "http://ambry.local/AAEAAQ", req.URL)
	assert.Equal(t, 1174, req.Port)
	assert.Equal(t, MethodGet, req.Method)
	assert.Equal(t, "AAEAAQ", req.BlobPath)
	assert.False(t, req.NoBody)
	require.Len(t, req.Headers, 1)
	assert.Equal(t, Header{Name: ServiceIDHeader, Value: DefaultServiceID}, req.Headers[0])
}

func TestAdapter_EscapesBlobPath(t *testing.T) {
	a := NewAdapter("http://ambry.local", 1174, "", nil)

	tests := map[string]string{
		"a#x":     "http://ambry.local/a%23x",
		"a?x=1":   "http://ambry.local/a%3Fx=1",
		"100%":    "http://ambry.local/100%25",
		"my file": "http://ambry.local/my%20file",
	}
	for id, want := range tests {
		req := a.NewRequest(MethodGet, id, Options{})
		assert.Equal(t, want, req.URL, id)
		assert.Equal(t, id, req.BlobPath, id)
	}
}

func TestAdapter_HeadSuppressesBody(t *testing.T) {
	a := NewAdapter("http://ambry.local", 1174, "svc", nil)

	assert.True(t, a.NewRequest(MethodHead, "b", Options{}).NoBody)
	assert.True(t, a.NewRequest(MethodGet, "b", Options{NoBody: true}).NoBody)
	assert.Equal(t, "svc", a.NewRequest(MethodDelete, "b", Options{}).Header(ServiceIDHeader))
}

func TestAdapter_ExecutePassesStatusThrough(t *testing.T) {
	doer := &recordingDoer{resp: &Response{StatusCode: 404, ContentLength: -1}}
	a := NewAdapter("http://ambry.local", 1174, "ambryfs", doer)

	resp, err := a.Execute(context.Background(), MethodDelete, "blob", Options{})
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, MethodDelete, doer.requests[0].Method)
	assert.Equal(t, "ambryfs", doer.requests[0].Header(ServiceIDHeader))
}

func TestAdapter_ExecuteWrapsUntypedErrors(t *testing.T) {
	doer := &recordingDoer{err: errors.New("boom")}
	a := NewAdapter("http://ambry.local", 1174, "", doer)

	_, err := a.Execute(context.Background(), MethodGet, "blob", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ProtocolError, terr.Kind)
}

func TestAdapter_ExecuteKeepsTypedErrors(t *testing.T) {
	doer := &recordingDoer{err: &Error{Kind: ConnectFailed, Detail: "dial"}}
	a := NewAdapter("http://ambry.local", 1174, "", doer)

	_, err := a.Execute(context.Background(), MethodGet, "blob", Options{})
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.NotErrorIs(t, err, ErrProtocol)
}
