package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/pkg/kit"
)

func newTestServer(t *testing.T, src Source) *httptest.Server {
	t.Helper()

	a, err := New(Bundled())
	require.NoError(t, err)

	h := NewHandler(&Server{Catalog: a, Source: src, Log: zap.NewNop()}, HTTPDeps{
		Log:      zap.NewNop(),
		Service:  "catalog",
		Registry: prometheus.NewRegistry(),
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func TestHTTP_ListProducts(t *testing.T) {
	ts := newTestServer(t, nil)

	var tr []ProductView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/products?locale=tr", &tr))
	require.NotEmpty(t, tr)
	assert.Equal(t, "Klasik Deri Kemer", tr[0].Name)

	var fr []ProductView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/products?locale=fr", &fr))
	assert.Equal(t, "Classic Leather Belt", fr[0].Name)
	assert.Len(t, fr, len(tr))
}

func TestHTTP_GetProduct(t *testing.T) {
	ts := newTestServer(t, nil)

	var p ProductView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/products/classic-leather-belt", &p))
	assert.Equal(t, "Classic Leather Belt", p.Name)

	var e kit.ErrorResponse
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/v1/products/no-such-slug?locale=tr", &e))
	assert.Equal(t, "not found", e.Error)
	assert.NotEmpty(t, e.RequestID)
}

func TestHTTP_Categories(t *testing.T) {
	ts := newTestServer(t, nil)

	var cats []CategoryView
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/categories?locale=tr", &cats))
	require.NotEmpty(t, cats)
	assert.Equal(t, "Deri", cats[0].Name)
}

func TestHTTP_Readyz(t *testing.T) {
	ok := newTestServer(t, NewEmbeddedSource())
	assert.Equal(t, http.StatusOK, getJSON(t, ok.URL+"/readyz", nil))

	down := newTestServer(t, failingSource{err: errors.New("db down")})
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, down.URL+"/readyz", nil))
}

func TestHTTP_MetricsDisabledByDefault(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/metrics", nil))
}

func TestHTTPSource_RoundTripsDataset(t *testing.T) {
	ts := newTestServer(t, nil)

	src := NewHTTPSource(ts.URL + "/")
	require.NoError(t, src.Ping(context.Background()))

	a, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Bundled().Products, a.Dataset().Products)
	assert.Equal(t, "Klasik Deri Kemer", a.ListProducts("tr")[0].Name)
}

func TestHTTPSource_Errors(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	_, err := NewHTTPSource(bad.URL).Load(context.Background())
	assert.ErrorIs(t, err, ErrRemoteBadStatus)
	assert.ErrorIs(t, NewHTTPSource(bad.URL).Ping(context.Background()), ErrRemoteBadStatus)

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer garbage.Close()
	_, err = NewHTTPSource(garbage.URL).Load(context.Background())
	assert.ErrorContains(t, err, "decode dataset")

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	_, err = NewHTTPSource(url).Load(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.False(t, strings.HasSuffix(NewHTTPSource("http://x/").BaseURL, "/"))
}
