package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/restkit/restkit/pkg/collection"
)

func TestExecuteExpandsURLAndBody(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("get uid", collection.MethodPost, srv.URL+"/{{uid}}")
	ep.BodyTemplate = `{"n":"{{n}}"}`

	inputs := collection.RequestInputs{
		Variables: map[string]string{"uid": "7", "n": "Ada"},
	}

	c := NewClient()
	resp, err := c.Execute(context.Background(), ep, inputs, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("got status %d", resp.Status)
	}
	if gotPath != "/7" {
		t.Fatalf("got path %q, want /7", gotPath)
	}
	if gotBody != `{"n":"Ada"}` {
		t.Fatalf("got body %q", gotBody)
	}
}

func TestExecuteQueryParamEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("search", collection.MethodGet, srv.URL+"/s")
	inputs := collection.RequestInputs{
		QueryParams: map[string]string{"q": "hello world"},
	}

	c := NewClient()
	_, err := c.Execute(context.Background(), ep, inputs, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "q=hello%20world" {
		t.Fatalf("got query %q", gotQuery)
	}
}

func TestExecuteMissingVariableFails(t *testing.T) {
	ep := collection.NewEndpoint("bad", collection.MethodGet, "https://example.test/{{missing}}")
	c := NewClient()
	_, err := c.Execute(context.Background(), ep, collection.RequestInputs{}, 5*time.Second)
	if err == nil {
		t.Fatal("expected missing variable error")
	}
}

func TestExecuteEndpointHeaderDoesNotOverrideInputHeader(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("hdr", collection.MethodGet, srv.URL+"/x")
	ep.Headers.Set("X-Custom", "from-endpoint")

	inputs := collection.RequestInputs{
		Headers: map[string]string{"X-Custom": "from-inputs"},
	}

	c := NewClient()
	_, err := c.Execute(context.Background(), ep, inputs, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHeader != "from-inputs" {
		t.Fatalf("got %q, want from-inputs", gotHeader)
	}
}

func TestExecuteTrafficRecordPopulated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("t", collection.MethodGet, srv.URL+"/x")
	c := NewClient()
	resp, err := c.Execute(context.Background(), ep, collection.RequestInputs{}, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Traffic == nil {
		t.Fatal("expected traffic record")
	}
	if resp.Traffic.ResponseBodySize != 4 {
		t.Fatalf("got response body size %d, want 4", resp.Traffic.ResponseBodySize)
	}
}
