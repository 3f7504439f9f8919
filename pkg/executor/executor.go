// Package executor builds and sends one HTTP request from an Endpoint and
// RequestInputs, capturing timing and the resulting Response. A bare
// HTTPRequest-with-no-templating-or-auth runner grew here into the full
// nine-step pipeline: template expansion, auth materialization, header/query
// merge, percent-encoded URL assembly, validation, and TTFB-aware timing.
package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/restkit/restkit/pkg/apperr"
	"github.com/restkit/restkit/pkg/auth"
	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/template"
)

// DefaultTimeout is used whenever an endpoint doesn't set its own.
const DefaultTimeout = 30 * time.Second

// MaxIdleConnsPerHost bounds the shared client's idle connection pool.
const MaxIdleConnsPerHost = 10

// Client wraps a shared *http.Client configured for a bounded resource model: a
// cloneable handle with an internal connection pool, reused across every
// single-shot request and every load-test worker.
type Client struct {
	http           *http.Client
	defaultTimeout time.Duration
}

// NewClient builds a Client with a connection pool capped at
// MaxIdleConnsPerHost idle connections per host and DefaultTimeout as its
// fallback per-request timeout.
func NewClient() *Client {
	return NewClientWithConfig(DefaultTimeout, MaxIdleConnsPerHost)
}

// NewClientWithConfig builds a Client using the given fallback timeout and
// idle-connection-per-host cap, so the ambient config package's tunables
// reach the connection pool instead of always falling back to the package
// constants.
func NewClientWithConfig(defaultTimeout time.Duration, maxIdleConnsPerHost int) *Client {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	if maxIdleConnsPerHost <= 0 {
		maxIdleConnsPerHost = MaxIdleConnsPerHost
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	return &Client{
		http: &http.Client{
			Transport: transport,
		},
		defaultTimeout: defaultTimeout,
	}
}

// Execute runs the nine-step request pipeline against ep using inputs,
// honoring timeout (falling back to the client's default timeout when
// zero). A positive ep.TimeoutSecs takes precedence over both. It never
// mutates ep or inputs.
func (c *Client) Execute(ctx context.Context, ep collection.Endpoint, inputs collection.RequestInputs, timeout time.Duration) (*collection.Response, error) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
	}
	if ep.TimeoutSecs != nil && *ep.TimeoutSecs > 0 {
		timeout = time.Duration(*ep.TimeoutSecs) * time.Second
	}

	vars := inputs.Variables

	// Step 1: expand URL strictly.
	rawURL, err := template.SubstituteStrict(ep.URL, vars)
	if err != nil {
		return nil, err
	}

	// Step 2: copy query params into a working map.
	query := make(map[string]string, len(inputs.QueryParams))
	for k, v := range inputs.QueryParams {
		query[k] = v
	}

	// Step 3: start from inputs.headers, apply auth into both maps.
	headers := make(collection.OrderedHeaders, 0, len(inputs.Headers)+len(ep.Headers))
	for k, v := range inputs.Headers {
		headers.Set(k, v)
	}
	if err := auth.Apply(ctx, ep.Auth, &headers, query, vars); err != nil {
		return nil, err
	}

	// Step 4: for each endpoint header not already present, expand and insert.
	for _, p := range ep.Headers {
		if headers.Has(p.Key) {
			continue
		}
		val, err := template.SubstituteStrict(p.Value, vars)
		if err != nil {
			return nil, err
		}
		headers.Set(p.Key, val)
	}

	// Step 5: build the final URL with percent-encoded query params.
	finalURL, err := buildURL(rawURL, query)
	if err != nil {
		return nil, err
	}

	// Step 6: validate every header name.
	for _, p := range headers {
		if !validHeaderName(p.Key) {
			return nil, &apperr.InvalidHeader{Name: p.Key}
		}
	}

	// Step 7: choose a body.
	var body string
	var hasBody bool
	switch {
	case inputs.Body != nil:
		body, err = template.SubstituteStrict(*inputs.Body, vars)
		if err != nil {
			return nil, err
		}
		hasBody = true
	case ep.BodyTemplate != "":
		body, err = template.SubstituteStrict(ep.BodyTemplate, vars)
		if err != nil {
			return nil, err
		}
		hasBody = true
	}

	return c.send(ctx, string(ep.Method), finalURL, headers, body, hasBody, timeout)
}

// send performs step 8-9: timed execution and Response assembly.
func (c *Client) send(ctx context.Context, method, rawURL string, headers collection.OrderedHeaders, body string, hasBody bool, timeout time.Duration) (*collection.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	var requestBodySize int
	if hasBody {
		bodyReader = strings.NewReader(body)
		requestBodySize = len(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), rawURL, bodyReader)
	if err != nil {
		return nil, &apperr.InvalidURL{URL: rawURL, Err: err}
	}
	requestHeaderSize := 0
	for _, p := range headers {
		httpReq.Header.Set(p.Key, p.Value)
		requestHeaderSize += len(p.Key) + len(p.Value)
	}

	var ttfb time.Time
	sendStart := time.Now()
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			ttfb = time.Now()
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	t0 := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &apperr.Request{Msg: fmt.Sprintf("%s %s", method, rawURL), Err: err}
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	tEnd := time.Now()
	if err != nil {
		return nil, &apperr.Request{Msg: "reading response body", Err: err}
	}
	if ttfb.IsZero() {
		ttfb = tEnd
	}

	respHeaders := make(map[string]string, len(httpResp.Header))
	responseHeaderSize := 0
	for key, values := range httpResp.Header {
		joined := strings.Join(values, ", ")
		respHeaders[key] = joined
		responseHeaderSize += len(key) + len(joined)
	}

	return &collection.Response{
		Status:  httpResp.StatusCode,
		Headers: respHeaders,
		Body:    bodyBytes,
		Total:   tEnd.Sub(t0),
		Traffic: &collection.TrafficRecord{
			Waiting:            ttfb.Sub(sendStart),
			ContentDownload:    tEnd.Sub(ttfb),
			RequestHeaderSize:  requestHeaderSize,
			RequestBodySize:    requestBodySize,
			ResponseHeaderSize: responseHeaderSize,
			ResponseBodySize:   len(bodyBytes),
		},
	}, nil
}

// buildURL appends query as "?k1=v1&k2=v2..." (or "&..." if base already has
// a query string) with RFC 3986 unreserved-set percent-encoding of both keys
// and values.
func buildURL(base string, query map[string]string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", &apperr.InvalidURL{URL: base, Err: err}
	}
	if len(query) == 0 {
		return base, nil
	}

	if parsed.Scheme == "" && parsed.Host == "" && !strings.Contains(base, "://") {
		return "", &apperr.InvalidURL{URL: base, Err: fmt.Errorf("missing scheme/host")}
	}

	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}

	var sb strings.Builder
	sb.WriteString(base)
	for k, v := range query {
		sb.WriteString(separator)
		separator = "&"
		sb.WriteString(percentEncode(k))
		sb.WriteByte('=')
		sb.WriteString(percentEncode(v))
	}

	return sb.String(), nil
}

// percentEncode encodes s per RFC 3986's unreserved set (ALPHA / DIGIT /
// "-" / "." / "_" / "~"); everything else, including space, is percent
// escaped ("%20" for space, never "+").
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) {
			sb.WriteByte(b)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", b)
	}
	return sb.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	default:
		return false
	}
}

// validHeaderName reports whether name is non-empty, pure ASCII, and
// contains no control characters.
func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b > 127 || b < 0x20 || b == 0x7f {
			return false
		}
	}
	return true
}
