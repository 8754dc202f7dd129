package blob

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

type call struct {
	method string
	path   string
	opts   transport.Options
	ctxErr error
}

// scriptedExecutor answers every request with the same response or error.
type scriptedExecutor struct {
	mu    sync.Mutex
	calls []call
	resp  *transport.Response
	err   error
}

func (e *scriptedExecutor) Execute(ctx context.Context, method, blobPath string, opts transport.Options) (*transport.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call{method: method, path: blobPath, opts: opts, ctxErr: ctx.Err()})
	return e.resp, e.err
}

func status(code int, body string, contentLength int64) *scriptedExecutor {
	return &scriptedExecutor{resp: &transport.Response{StatusCode: code, Body: []byte(body), ContentLength: contentLength}}
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("/AAEAAQ")
	require.NoError(t, err)
	assert.Equal(t, Path("AAEAAQ"), p)

	for _, bad := range []string{"/", "", "/dir/file"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestResolver_ProbeExisting(t *testing.T) {
	exec := status(200, "", 11)
	attr, err := NewResolver(exec).Probe(context.Background(), "a")
	require.NoError(t, err)

	assert.True(t, attr.Exists)
	assert.Equal(t, KindRegular, attr.Kind)
	assert.Equal(t, uint64(11), attr.Size)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, transport.MethodHead, exec.calls[0].method)
	assert.True(t, exec.calls[0].opts.NoBody)
}

func TestResolver_ProbeZeroLength(t *testing.T) {
	attr, err := NewResolver(status(200, "", 0)).Probe(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, attr.Exists)
	assert.Zero(t, attr.Size)
}

func TestResolver_ProbeAbsent(t *testing.T) {
	for _, code := range []int{404, 410} {
		attr, err := NewResolver(status(code, "", -1)).Probe(context.Background(), "a")
		require.NoError(t, err)
		assert.False(t, attr.Exists)
		assert.Equal(t, KindAbsent, attr.Kind)
	}
}

func TestResolver_ProbeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewResolver(status(200, "", -1)).Probe(ctx, "a")
	assert.ErrorIs(t, err, ErrSizeUnknown)

	_, err = NewResolver(status(400, "", -1)).Probe(ctx, "a")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewResolver(status(503, "", -1)).Probe(ctx, "a")
	assert.ErrorIs(t, err, ErrUnexpected)
	var serr *UnexpectedStatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 503, serr.StatusCode)

	failing := &scriptedExecutor{err: &transport.Error{Kind: transport.ConnectFailed}}
	_, err = NewResolver(failing).Probe(ctx, "a")
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.ErrorIs(t, err, transport.ErrConnectFailed)
}

func TestFetcher_Fetch(t *testing.T) {
	exec := status(200, "hello world", 11)
	body, err := NewFetcher(exec).Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))

	require.Len(t, exec.calls, 1)
	assert.Equal(t, transport.MethodGet, exec.calls[0].method)
	assert.False(t, exec.calls[0].opts.NoBody)
}

func TestFetcher_BodyLengthIsAuthoritative(t *testing.T) {
	body, err := NewFetcher(status(200, "abc", 100)).Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, body, 3)

	body, err = NewFetcher(&scriptedExecutor{resp: &transport.Response{StatusCode: 200, ContentLength: -1}}).Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.NotNil(t, body)
	assert.Empty(t, body)
}

func TestFetcher_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFetcher(status(404, "", -1)).Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewFetcher(status(410, "", -1)).Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewFetcher(status(400, "", -1)).Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewFetcher(status(500, "", -1)).Fetch(ctx, "a")
	assert.ErrorIs(t, err, ErrUnexpected)

	_, err = NewFetcher(&scriptedExecutor{err: &transport.Error{Kind: transport.ProtocolError}}).Fetch(ctx, "a")
	assert.ErrorIs(t, err, transport.ErrProtocol)
}

func TestDeleter_Delete(t *testing.T) {
	exec := status(202, "", 0)
	require.NoError(t, NewDeleter(exec).Delete(context.Background(), "a"))
	require.Len(t, exec.calls, 1)
	assert.Equal(t, transport.MethodDelete, exec.calls[0].method)
	assert.Equal(t, "a", exec.calls[0].path)
}

func TestDeleter_OnlyAcceptedSucceeds(t *testing.T) {
	for _, code := range []int{200, 204, 400, 404, 410, 500} {
		err := NewDeleter(status(code, "", 0)).Delete(context.Background(), "a")
		require.Error(t, err, code)
		assert.ErrorIs(t, err, ErrRejected)

		var rerr *RejectedError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, code, rerr.StatusCode)
	}
}

func TestDeleter_TransportFailure(t *testing.T) {
	exec := &scriptedExecutor{err: &transport.Error{Kind: transport.ConnectFailed}}
	err := NewDeleter(exec).Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, transport.ErrConnectFailed)
}

func TestProbeAndDeleteIgnoreCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	head := status(200, "", 3)
	attrs, err := NewResolver(head).Probe(ctx, "a")
	require.NoError(t, err)
	assert.True(t, attrs.Exists)
	require.Len(t, head.calls, 1)
	assert.NoError(t, head.calls[0].ctxErr)

	del := status(202, "", 0)
	require.NoError(t, NewDeleter(del).Delete(ctx, "a"))
	require.Len(t, del.calls, 1)
	assert.NoError(t, del.calls[0].ctxErr)
}
