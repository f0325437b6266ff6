// internal/web/helpers.go

// Package web holds the HTTP plumbing shared by the gateway and the data
// services: JSON envelopes, request decoding, error responses, middleware
// and graceful shutdown.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// maxBodyBytes caps every decoded request body.
const maxBodyBytes = 1_048_576

// Envelope is the top-level JSON object written by every handler,
// e.g. {"user": {...}, "success": true} or {"error": "...", "success": false}.
type Envelope map[string]any

// Success wraps data under key and marks the envelope successful.
func Success(key string, data any) Envelope {
	return Envelope{key: data, "success": true}
}

// Failure is the envelope for a logical failure.
func Failure(message string) Envelope {
	return Envelope{"error": message, "success": false}
}

// ReadIDParam extracts the ":id" parameter and requires a positive integer.
func ReadIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(Param(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// Param returns a named httprouter parameter. Catch-all values lose their
// leading slash.
func Param(r *http.Request, name string) string {
	params := httprouter.ParamsFromContext(r.Context())
	return strings.TrimPrefix(params.ByName(name), "/")
}

// ReadString reads a string query parameter, returning defaultValue if the
// key is absent or empty.
func ReadString(qs url.Values, key, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

// ReadInt reads an integer query parameter, returning defaultValue if the key
// is absent or not an integer.
func ReadInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// WriteJSON marshals data, applies any extra headers, and writes it with the
// given status.
func WriteJSON(w http.ResponseWriter, status int, data Envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// ReadJSON decodes exactly one JSON value from the body into dst. Struct
// targets reject unknown fields; untyped targets keep numbers as json.Number
// so they survive re-encoding unchanged.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", typeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
