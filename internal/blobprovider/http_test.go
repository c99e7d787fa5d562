package blobprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okServer(body string, delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
}

func notFoundServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
}

func TestHttpProvider_PrimaryOnlySuccess(t *testing.T) {
	srv := okServer("archive-bytes", 0)
	defer srv.Close()

	p := &HttpProvider{PrimaryURL: srv.URL}
	data, err := p.Get(context.Background(), "Shared", "v1")
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
}

func TestHttpProvider_PrimaryNotFoundNoSecondary(t *testing.T) {
	srv := notFoundServer()
	defer srv.Close()

	p := &HttpProvider{PrimaryURL: srv.URL}
	_, err := p.Get(context.Background(), "Shared", "v1")
	require.Error(t, err)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHttpProvider_SecondaryWinsAfterPrimaryFails(t *testing.T) {
	primary := notFoundServer()
	defer primary.Close()
	secondary := okServer("from-secondary", 0)
	defer secondary.Close()

	p := &HttpProvider{PrimaryURL: primary.URL, SecondaryURL: secondary.URL, HeadStart: 10 * time.Millisecond}
	data, err := p.Get(context.Background(), "Shared", "v1")
	require.NoError(t, err)
	assert.Equal(t, "from-secondary", string(data))
}

func TestHttpProvider_BothFailSurfacesPrimaryError(t *testing.T) {
	primary := notFoundServer()
	defer primary.Close()
	secondary := notFoundServer()
	defer secondary.Close()

	p := &HttpProvider{PrimaryURL: primary.URL, SecondaryURL: secondary.URL, HeadStart: time.Millisecond}
	_, err := p.Get(context.Background(), "Shared", "v1")
	require.Error(t, err)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHttpProvider_PrimaryWinsWithinHeadStart(t *testing.T) {
	primary := okServer("from-primary", 0)
	defer primary.Close()
	secondary := okServer("from-secondary", 0)
	defer secondary.Close()

	p := &HttpProvider{PrimaryURL: primary.URL, SecondaryURL: secondary.URL, HeadStart: time.Hour}
	data, err := p.Get(context.Background(), "Shared", "v1")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", string(data))
}

func TestHttpProvider_PutUnsupported(t *testing.T) {
	p := &HttpProvider{PrimaryURL: "http://example.invalid"}
	err := p.Put(context.Background(), "Shared", "v1", []byte("x"))
	var unsupported *UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}
