package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PerformRequest drives one request through engine and returns the recorded
// response. Body may be nil; headers apply in map order.
func PerformRequest(t *testing.T, engine *gin.Engine, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// JSONBody marshals v into a reader suitable for a request body.
func JSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "marshal request body")
	return bytes.NewReader(data)
}

// DecodeJSON unmarshals the recorded response body into a generic map.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "decode response body")
	return out
}

// DecodeJSONAs unmarshals the recorded response body into T.
func DecodeJSONAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "decode response body")
	return out
}

// AssertSuccessEnvelope checks the standard success envelope shape.
func AssertSuccessEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()

	assert.Equal(t, wantStatus, w.Code)
	body := DecodeJSON(t, w)
	assert.Equal(t, true, body["success"], "expected success envelope")
	return body
}

// AssertErrorEnvelope checks the standard error envelope shape and, when
// wantCode is non-empty, the machine-readable error code.
func AssertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) map[string]any {
	t.Helper()

	assert.Equal(t, wantStatus, w.Code)
	body := DecodeJSON(t, w)
	assert.Equal(t, false, body["success"], "expected error envelope")

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "error envelope missing error object: %s", w.Body.String())
	if wantCode != "" {
		assert.Equal(t, wantCode, errObj["code"])
	}
	return body
}

// StatusHandler is a terminal handler for middleware tests. It records that
// the chain passed the middleware under test and responds with status.
func StatusHandler(status int, reached *bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reached != nil {
			*reached = true
		}
		c.Status(status)
	}
}
