package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxBodyBytes bounds every request body read by a handler.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// submission is the decoded body of a ledger request. HTMX posts forms, while
// scripts and hx-ext="json-enc" send a JSON object; both end up as the same
// flat field set. Fields missing from the body fall back to the query string.
type submission struct {
	fields url.Values
	query  url.Values
}

// readSubmission consumes the request body once.
func readSubmission(r *http.Request) (*submission, error) {
	s := &submission{fields: url.Values{}, query: r.URL.Query()}
	if r.Body == nil {
		return s, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return s, nil
	case isJSONBody(r.Header.Get("Content-Type"), trimmed):
		return s, s.decodeJSON(trimmed)
	default:
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse form body: %w", err)
		}
		s.fields = vals
		return s, nil
	}
}

// querySubmission reads fields from the query string only, for GET partials.
func querySubmission(r *http.Request) *submission {
	return &submission{fields: url.Values{}, query: r.URL.Query()}
}

func isJSONBody(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/json" {
		return true
	}
	return body[0] == '{'
}

// decodeJSON flattens a JSON object of scalars. Numbers keep their literal
// text so an amount like 12.10 is not rounded through float64.
func (s *submission) decodeJSON(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decode json body: %w", err)
	}
	for key, v := range obj {
		switch val := v.(type) {
		case string:
			s.fields.Set(key, val)
		case json.Number:
			s.fields.Set(key, val.String())
		case bool:
			if val {
				s.fields.Set(key, "true")
			} else {
				s.fields.Set(key, "false")
			}
		}
	}
	return nil
}

func (s *submission) raw(key string) string {
	if s.fields.Has(key) {
		return s.fields.Get(key)
	}
	return s.query.Get(key)
}

// Value returns a single-line field: control characters removed, trimmed.
func (s *submission) Value(key string) string {
	return sanitizeInput(s.raw(key))
}

// Text returns a free-text field with control characters removed but its
// surrounding whitespace intact.
func (s *submission) Text(key string) string {
	return stripControl(s.raw(key))
}

// RequireMethod answers 405 with an Allow header unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
