package gateway

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_Path(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		segments []any
		want     string
	}{
		{name: "no segments", resource: "product", want: "product"},
		{name: "int segment", resource: "product", segments: []any{7}, want: "product/7"},
		{name: "int64 segment", resource: "product", segments: []any{int64(42)}, want: "product/42"},
		{name: "string segment", resource: "order", segments: []any{"o1"}, want: "order/o1"},
		{name: "mixed in order", resource: "user", segments: []any{"email", "a@b.c"}, want: "user/email/a@b.c"},
		{name: "preformatted resource", resource: "user/edit", want: "user/edit"},
		{name: "empty string segment", resource: "user", segments: []any{""}, want: "user/"},
		{name: "slash is not escaped", resource: "post", segments: []any{"a/b"}, want: "post/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(RDS, http.MethodGet, tt.resource, tt.segments, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Path)
			assert.Equal(t, RDS, req.Backend)
			assert.Equal(t, http.MethodGet, req.Method)
		})
	}
}

func TestNewRequest_NoPayloadNoBody(t *testing.T) {
	req, err := NewRequest(MDB, http.MethodDelete, "post", []any{"p1"}, nil)
	require.NoError(t, err)
	assert.Nil(t, req.Body)
	assert.Empty(t, req.ContentType)
}

func TestNewRequest_PayloadRoundTrips(t *testing.T) {
	payloads := []any{
		map[string]any{"id": "o1", "total": 9.5},
		map[string]any{"name": "lamp", "tags": []any{"home", "light"}, "stock": float64(3)},
		[]any{"a", float64(1), true, nil},
		"plain string",
	}

	for _, payload := range payloads {
		req, err := NewRequest(MDB, http.MethodPost, "order", nil, payload)
		require.NoError(t, err)
		assert.Equal(t, "application/json", req.ContentType)
		require.True(t, json.Valid(req.Body))

		var decoded any
		require.NoError(t, json.Unmarshal(req.Body, &decoded))
		assert.Equal(t, payload, decoded)
	}
}

func TestNewRequest_EncodingFailure(t *testing.T) {
	_, err := NewRequest(RDS, http.MethodPost, "product", nil, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Equal(t, KindEncoding, KindOf(err))

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "request payload could not be encoded", gerr.Message)
}
