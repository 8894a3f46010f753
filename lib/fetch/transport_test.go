package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tabwatch/lib/telemetry"
)

func newTestTransport(t *testing.T) Transport {
	cleanup := telemetry.SetupForTesting(t, "test:fetch")
	t.Cleanup(cleanup)
	return NewTransport(NewStandardClient())
}

func TestTransportCarriesQueryHeadersAndForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "24", r.FormValue("limit"))
		require.Equal(t, "48", r.FormValue("offset"))
		require.Equal(t, "fragment", r.Header.Get("x-requested-with"))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	res, err := newTestTransport(t).Do(context.Background(), Descriptor{
		Method:  "POST",
		URL:     srv.URL,
		Query:   url.Values{"limit": {"24"}},
		Headers: map[string]string{"x-requested-with": "fragment"},
		Form:    map[string]string{"offset": "48"},
	})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.Equal(t, "ok", res.Body)
}

func TestTransportSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("content-type"))
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"operationName":"GetAds"`)
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	res, err := newTestTransport(t).Do(context.Background(), Descriptor{
		Method: "POST",
		URL:    srv.URL,
		JSON:   map[string]string{"operationName": "GetAds"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"data":{}}`, res.Body)
}

func TestTransportClassifiesStatuses(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusForbidden, KindForbidden},
		{http.StatusInternalServerError, KindUnknown},
		{http.StatusNotFound, KindUnknown},
	}
	transport := newTestTransport(t)
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))

		_, err := transport.Do(context.Background(), Descriptor{URL: srv.URL})
		srv.Close()

		var ferr *Error
		require.ErrorAs(t, err, &ferr)
		require.Equal(t, c.kind, ferr.Kind, "status %d", c.status)
	}
}

func TestTransportRejectsUnsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write([]byte{0x1b, 0x00, 0x00})
	}))
	defer srv.Close()

	_, err := newTestTransport(t).Do(context.Background(), Descriptor{URL: srv.URL})
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindProtocol, ferr.Kind)
}

func TestTransportRejectsMostlyInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write(bytes.Repeat([]byte{0xfe, 0xff}, 64))
	}))
	defer srv.Close()

	_, err := newTestTransport(t).Do(context.Background(), Descriptor{URL: srv.URL})
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindDecode, ferr.Kind)
}

func TestTransportTolerantOfSparseInvalidBytes(t *testing.T) {
	page := append([]byte("<html><body>qiym"), 0xd9)
	page = append(page, []byte("t 959</body></html>")...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	res, err := newTestTransport(t).Do(context.Background(), Descriptor{URL: srv.URL})
	require.NoError(t, err)
	require.Contains(t, res.Body, "959")
}

func TestTransportClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestTransport(t).Do(ctx, Descriptor{URL: srv.URL})
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindTimeout, ferr.Kind)
}

func TestTransportClassifiesRefusedConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestTransport(t).Do(context.Background(), Descriptor{URL: addr})
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindConnectionRefused, ferr.Kind)
}
