package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_Post(t *testing.T) {
	var gotMethod, gotAuth, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)

		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"data":{"user":null}}`)
	}))
	defer server.Close()

	transport := NewTransport(server.URL, 0)
	resp, err := transport.Post(context.Background(), "query { viewer { login } }", map[string]any{"login": "octocat"}, "secret-token")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "bearer secret-token", gotAuth)
	assert.Contains(t, gotBody, "viewer")
	assert.Contains(t, gotBody, `"login":"octocat"`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4999", resp.Header.Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"data":{"user":null}}`, string(resp.Body))
}

func TestTransport_Post_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut down before the request so the dial fails

	transport := NewTransport(server.URL, 0)
	resp, err := transport.Post(context.Background(), "query {}", nil, "secret-token")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestResponse_Envelope(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantErrors int
		wantType   string
	}{
		{
			name:       "errors array with type",
			body:       `{"errors":[{"type":"NOT_FOUND","message":"nope"}]}`,
			wantErrors: 1,
			wantType:   "NOT_FOUND",
		},
		{
			name:       "no errors",
			body:       `{"data":{"user":{}}}`,
			wantErrors: 0,
		},
		{
			name:       "undecodable body yields empty envelope",
			body:       "<html>bad gateway</html>",
			wantErrors: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &Response{StatusCode: http.StatusOK, Body: []byte(tc.body)}
			env := resp.Envelope()
			assert.Len(t, env.Errors, tc.wantErrors)
			if tc.wantErrors > 0 {
				assert.Equal(t, tc.wantType, env.Errors[0].Type)
			}
		})
	}
}
