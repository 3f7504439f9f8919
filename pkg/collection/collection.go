// Package collection defines the data model shared by the executor, the
// load-test engine, the storage layer, and the TUI: endpoints, collections,
// auth configuration, request inputs, responses, and load-test config. It
// reshapes the request/response structs a YAML-backed persistence layer once
// used into the JSON-tagged tagged-union shapes the rest of restkit depends
// on.
package collection

import (
	"time"

	"github.com/google/uuid"
)

// Method is an HTTP method restricted to the set the UI offers.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// ApiKeyLocation selects where an ApiKey auth variant is materialized.
type ApiKeyLocation string

const (
	ApiKeyHeader     ApiKeyLocation = "Header"
	ApiKeyQueryParam ApiKeyLocation = "QueryParam"
)

// AuthKind discriminates the AuthConfig tagged union on the wire.
type AuthKind string

const (
	AuthBearer                 AuthKind = "Bearer"
	AuthBasic                  AuthKind = "Basic"
	AuthApiKey                 AuthKind = "ApiKey"
	AuthOAuth2ClientCredential AuthKind = "OAuth2ClientCredentials"
)

// AuthConfig is a tagged union of the four auth materializations restkit
// supports. Exactly one of the typed fields is populated, selected by Kind.
// All string fields may contain "{{name}}" placeholders.
type AuthConfig struct {
	Kind AuthKind `json:"type"`

	Bearer *BearerAuth `json:"bearer,omitempty"`
	Basic  *BasicAuth  `json:"basic,omitempty"`
	ApiKey *ApiKeyAuth `json:"api_key,omitempty"`
	OAuth2 *OAuth2Auth `json:"oauth2,omitempty"`
}

// BearerAuth carries a token materialized as "Authorization: Bearer <token>".
type BearerAuth struct {
	Token string `json:"token"`
}

// BasicAuth carries HTTP Basic credentials.
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ApiKeyAuth carries a named key/value pair placed in a header or query
// param, per Location.
type ApiKeyAuth struct {
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	Location ApiKeyLocation `json:"location"`
}

// OAuth2Auth is the supplemented client-credentials variant: the applier
// fetches a token from TokenURL once per request execution and materializes
// it as a Bearer header.
type OAuth2Auth struct {
	TokenURL     string   `json:"token_url"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
}

// LoadTestConfig bounds a load test: Concurrency in [1,1000], Duration in
// [1s,3600s], optional RampUp < Duration, optional RateLimit in [1,10000]
// requests/sec shared across all workers.
type LoadTestConfig struct {
	Concurrency int            `json:"concurrency"`
	Duration    time.Duration  `json:"duration"`
	RampUp      *time.Duration `json:"ramp_up,omitempty"`
	RateLimit   *int           `json:"rate_limit,omitempty"`
}

// Endpoint is a saved specification for issuing a single HTTP request.
type Endpoint struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Method         Method          `json:"method"`
	URL            string          `json:"url"`
	Headers        OrderedHeaders  `json:"headers"`
	BodyTemplate   string          `json:"body_template,omitempty"`
	Auth           *AuthConfig     `json:"auth,omitempty"`
	Description    string          `json:"description,omitempty"`
	TimeoutSecs    *int            `json:"timeout_secs,omitempty"`
	LoadTestConfig *LoadTestConfig `json:"load_test_config,omitempty"`
}

// NewEndpoint constructs an Endpoint with a fresh opaque id.
func NewEndpoint(name string, method Method, url string) Endpoint {
	return Endpoint{
		ID:      uuid.NewString(),
		Name:    name,
		Method:  method,
		URL:     url,
		Headers: OrderedHeaders{},
	}
}

// Collection is a named, ordered group of endpoints persisted as one file.
type Collection struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCollection constructs an empty Collection with a fresh opaque id and
// created_at == updated_at.
func NewCollection(name string) Collection {
	now := time.Now().UTC()
	return Collection{
		ID:        uuid.NewString(),
		Name:      name,
		Endpoints: nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddEndpoint appends e to the collection's endpoint sequence and advances
// UpdatedAt. It does not check for duplicate ids; callers that need the
// uniqueness invariant should check before calling (see HasEndpoint).
func (c *Collection) AddEndpoint(e Endpoint) {
	c.Endpoints = append(c.Endpoints, e)
	c.touch()
}

// RemoveEndpoint removes the endpoint with the given id, if present, and
// advances UpdatedAt. Reports whether an endpoint was removed.
func (c *Collection) RemoveEndpoint(id string) bool {
	for i, e := range c.Endpoints {
		if e.ID == id {
			c.Endpoints = append(c.Endpoints[:i:i], c.Endpoints[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// ReplaceEndpoint overwrites the endpoint matching e.ID in place and advances
// UpdatedAt. Reports whether a matching endpoint was found.
func (c *Collection) ReplaceEndpoint(e Endpoint) bool {
	for i := range c.Endpoints {
		if c.Endpoints[i].ID == e.ID {
			c.Endpoints[i] = e
			c.touch()
			return true
		}
	}
	return false
}

// HasEndpoint reports whether id is already present in the collection.
func (c *Collection) HasEndpoint(id string) bool {
	for _, e := range c.Endpoints {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (c *Collection) touch() {
	now := time.Now().UTC()
	if now.Before(c.UpdatedAt) {
		now = c.UpdatedAt
	}
	c.UpdatedAt = now
}

// RequestInputs carries per-invocation overrides layered on top of an
// Endpoint's saved defaults: headers and query params win over the
// endpoint's own, and Variables feeds template expansion.
type RequestInputs struct {
	Headers     map[string]string `json:"headers,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty"`
	Body        *string           `json:"body,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
}

// TrafficRecord is the per-response timing and size breakdown attached to a
// Response when the executor is able to measure it.
type TrafficRecord struct {
	Waiting            time.Duration `json:"waiting"`
	ContentDownload    time.Duration `json:"content_download"`
	RequestHeaderSize  int           `json:"request_header_size"`
	RequestBodySize    int           `json:"request_body_size"`
	ResponseHeaderSize int           `json:"response_header_size"`
	ResponseBodySize   int           `json:"response_body_size"`
}

// Response is the result of one executed request.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
	Total   time.Duration     `json:"total"`
	Traffic *TrafficRecord    `json:"traffic,omitempty"`
}
