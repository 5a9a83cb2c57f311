// Package testutil holds request builders and response assertions shared by
// handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "volunteerhub/pkg/domain"
)

// NewRequest builds a body-less request issued by actor.
func NewRequest(t *testing.T, method, target string, actor id.Actor) *http.Request {
	t.Helper()
	return WithActor(httptest.NewRequest(method, target, nil), actor)
}

// NewJSONRequest encodes payload as the request body. A nil payload sends an
// empty body with the JSON content type still set.
func NewJSONRequest(t *testing.T, method, target string, payload any, actor id.Actor) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err, "encode request payload")
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return WithActor(req, actor)
}

func DoRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// UnmarshalResponse decodes the recorded body into a fresh T.
func UnmarshalResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	out := new(T)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out), "decode response body: %s", rec.Body.String())
	return out
}

// AssertStatusAndError checks the status line and the "error" field of the
// httputil error envelope.
func AssertStatusAndError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "status code")
	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "decode error envelope: %s", rec.Body.String())
	assert.Equal(t, code, envelope.Error, "error code")
}
