package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"tabwatch/lib/telemetry"
)

// Descriptor describes one request to an upstream listing endpoint.
type Descriptor struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	// Form, when set, is sent urlencoded; JSON, when set, is sent as a
	// json body. At most one of the two should be set.
	Form map[string]string
	JSON any
}

// Response is a completed request with its body decoded to text.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Transport performs one request/response cycle. The standard and the
// impersonating implementations share this contract; callers never learn
// which one served a request.
type Transport interface {
	Do(ctx context.Context, d Descriptor) (*Response, error)
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// NewStandardClient builds the primary client: fail fast, since bot
// challenges tend to hang connections rather than answer them.
func NewStandardClient() *resty.Client {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.SetHeader("user-agent", browserUserAgent)
	client.SetHeader("accept-language", "az,en-US;q=0.9,en;q=0.8,ru;q=0.7")
	client.SetTimeout(time.Second * 15)
	client.GetClient().Transport = &http.Transport{
		DialContext:           (&net.Dialer{Timeout: time.Second * 8}).DialContext,
		TLSHandshakeTimeout:   time.Second * 8,
		ResponseHeaderTimeout: time.Second * 15,
	}

	telemetry.InstrumentResty(client, "lib/fetch/standard")
	return client
}

// NewImpersonatingClient builds the fallback client carrying a browser
// TLS fingerprint. No short timeout: the full fingerprint negotiation is
// slow and this client only runs after the primary already failed.
func NewImpersonatingClient() *resty.Client {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browserUserAgent)
	client.SetTimeout(time.Minute * 2)

	telemetry.InstrumentResty(client, "lib/fetch/impersonating")
	return client
}

type restyTransport struct {
	client *resty.Client
}

// NewTransport wraps a resty client in the Transport contract.
func NewTransport(client *resty.Client) Transport {
	return restyTransport{client: client}
}

func (t restyTransport) Do(ctx context.Context, d Descriptor) (*Response, error) {
	req := t.client.R().SetContext(ctx)
	for k, v := range d.Headers {
		req.SetHeader(k, v)
	}
	if len(d.Query) > 0 {
		req.SetQueryParamsFromValues(d.Query)
	}
	if d.Form != nil {
		req.SetFormData(d.Form)
	}
	if d.JSON != nil {
		req.SetHeader("content-type", "application/json")
		req.SetBody(d.JSON)
	}

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	res, err := req.Execute(method, d.URL)
	if err != nil {
		return nil, classify(d.URL, err)
	}

	if res.StatusCode() == http.StatusForbidden {
		return nil, &Error{Kind: KindForbidden, URL: d.URL, err: fmt.Errorf("status %d", res.StatusCode())}
	}
	if res.StatusCode() >= 400 {
		return nil, &Error{Kind: KindUnknown, URL: d.URL, err: fmt.Errorf("status %d", res.StatusCode())}
	}

	if enc := res.Header().Get("Content-Encoding"); !supportedEncoding(enc) {
		return nil, &Error{Kind: KindProtocol, URL: d.URL, err: fmt.Errorf("unsupported content-encoding %q", enc)}
	}

	body, err := decodeText(res.Body())
	if err != nil {
		return nil, &Error{Kind: KindDecode, URL: d.URL, err: err}
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       body,
	}, nil
}

func supportedEncoding(enc string) bool {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "identity", "gzip", "deflate":
		return true
	}
	return false
}

// decodeText performs a best-effort UTF-8 decode, substituting invalid
// sequences with the replacement character. A body that is mostly
// invalid is reported as an error instead of returned as mojibake.
func decodeText(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}

	var sb strings.Builder
	sb.Grow(len(b))
	invalid := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		sb.WriteRune(r)
		b = b[size:]
	}

	out := sb.String()
	if invalid*4 > len(out) {
		return "", fmt.Errorf("%d invalid byte sequences in %d byte body", invalid, len(out))
	}
	return out, nil
}
