// Package testutil provides request helpers for handler tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/admin"
	request "github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/request"
)

// NewRequest builds a JSON request. An empty body sends none.
func NewRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AsAdmin marks req as coming from actor holding the admin token.
func AsAdmin(req *http.Request, token, actor string) *http.Request {
	req.Header.Set(admin.HeaderAdminToken, token)
	req.Header.Set(request.HeaderActorID, actor)
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeResponse unmarshals the response body, failing the test on error.
// The body is left unread so callers may decode again.
func DecodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response: %s", rr.Body.String())
	return out
}

// ErrorCode returns the "error" field of an error response.
func ErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return DecodeResponse[map[string]string](t, rr)["error"]
}

// AssertError asserts both the status and the error code.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, "unexpected status: %s", rr.Body.String())
	assert.Equal(t, code, ErrorCode(t, rr))
}
