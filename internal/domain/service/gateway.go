// Package service declares the ports the use cases depend on.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Request describes one call to the remote API. Path is relative to the
// configured base URL, e.g. "waste/booking/42/". At most one of JSON and
// Form is set; neither means no body.
type Request struct {
	Method string
	Path   string
	JSON   any
	Form   *MultipartForm
	Header http.Header
}

// FormField is a text part of a multipart body.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a file part of a multipart body.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// MultipartForm is an ordered multipart/form-data body.
type MultipartForm struct {
	Fields []FormField
	Files  []FormFile
}

// Add appends a text field.
func (f *MultipartForm) Add(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
}

// AddFile appends a file part.
func (f *MultipartForm) AddFile(file FormFile) {
	f.Files = append(f.Files, file)
}

// Response is a successful (2xx) API answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decode response body")
	}

	return nil
}

// Gateway dispatches requests to the remote API. Non-2xx answers are
// returned as *APIError; transport failures wrap domainerrors.ErrNetwork.
type Gateway interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// APIError is a non-2xx answer of the remote API.
type APIError struct {
	Status int
	Body   []byte
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, truncate(e.Body, 256))
}

// IsUnauthorized reports a 401, the only session invalidation signal.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsClientError reports a 4xx.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// FieldErrors extracts field-level messages from a body shaped like
// {"email": ["..."], "password": "..."} or {"error": "..."}.
// Non-string values are ignored.
func (e *APIError) FieldErrors() map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &raw); err != nil {
		return nil
	}

	fields := make(map[string][]string, len(raw))
	for key, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			if len(list) > 0 {
				fields[key] = list
			}

			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			fields[key] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	return fields
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsUnauthorized reports whether err carries a 401 from the API.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)

	return ok && apiErr.IsUnauthorized()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}

	return string(b[:n]) + "..."
}
