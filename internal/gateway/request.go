package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

const contentTypeJSON = "application/json"

// Request is an outbound call to a backend. Path is relative to the
// backend's base address.
type Request struct {
	Backend     Backend
	Method      string
	Path        string
	Body        []byte
	ContentType string
}

// NewRequest builds an outbound request. Each segment is appended to
// resourcePath as "/" followed by its default string form, left to right.
// Segments are not escaped, so a segment containing "/" adds path levels.
// A non-nil payload is encoded as the JSON body.
func NewRequest(b Backend, method, resourcePath string, segments []any, payload any) (*Request, error) {
	var sb strings.Builder
	sb.WriteString(resourcePath)
	for _, seg := range segments {
		sb.WriteByte('/')
		sb.WriteString(fmt.Sprint(seg))
	}

	req := &Request{
		Backend: b,
		Method:  method,
		Path:    sb.String(),
	}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{
				Kind:    KindEncoding,
				Op:      "build",
				Backend: b.String(),
				Message: "request payload could not be encoded",
				Err:     err,
			}
		}
		req.Body = body
		req.ContentType = contentTypeJSON
	}

	return req, nil
}
