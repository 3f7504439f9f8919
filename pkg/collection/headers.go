package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// HeaderPair is one entry of an OrderedHeaders sequence.
type HeaderPair struct {
	Key   string
	Value string
}

// OrderedHeaders is an insertion-ordered, case-insensitive mapping from
// header name to value. Endpoint headers are stored this way so that
// serialization round-trips the order a user entered them in, while lookups
// and the executor's "already present" checks are case-insensitive as HTTP
// requires.
type OrderedHeaders []HeaderPair

// Get returns the value for key (case-insensitive) and whether it was found.
func (h OrderedHeaders) Get(key string) (string, bool) {
	for _, p := range h {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present (case-insensitive).
func (h OrderedHeaders) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Set inserts or overwrites the value for key (case-insensitive match),
// preserving the position of an existing entry or appending a new one.
func (h *OrderedHeaders) Set(key, value string) {
	for i, p := range *h {
		if strings.EqualFold(p.Key, key) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, HeaderPair{Key: key, Value: value})
}

// Delete removes the entry matching key (case-insensitive), if present.
func (h *OrderedHeaders) Delete(key string) {
	for i, p := range *h {
		if strings.EqualFold(p.Key, key) {
			*h = append((*h)[:i:i], (*h)[i+1:]...)
			return
		}
	}
}

// MarshalJSON renders the sequence as a JSON object whose key order matches
// insertion order, which encoding/json's native map marshaling cannot do.
func (h OrderedHeaders) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into an order-preserving sequence,
// using json.Decoder's token stream since map[string]string would discard
// key order.
func (h *OrderedHeaders) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("collection: headers must be a JSON object, got %v", tok)
	}

	out := OrderedHeaders{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, HeaderPair{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*h = out
	return nil
}

// ToMap materializes a plain map, last-write-wins on duplicate keys (there
// should be none after Set's dedup discipline).
func (h OrderedHeaders) ToMap() map[string]string {
	m := make(map[string]string, len(h))
	for _, p := range h {
		m[p.Key] = p.Value
	}
	return m
}
