package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statscard/statscard/internal/apperr"
	"github.com/statscard/statscard/internal/sl"
)

// scriptedServer replays one canned response per request and records the
// Authorization header of every attempt.
type scriptedServer struct {
	mu        sync.Mutex
	responses []func(w http.ResponseWriter)
	auths     []string
}

func (s *scriptedServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.auths = append(s.auths, r.Header.Get("Authorization"))
		i := len(s.auths) - 1
		if i >= len(s.responses) {
			i = len(s.responses) - 1
		}
		s.responses[i](w)
	}
}

func (s *scriptedServer) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.auths)
}

func respondOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"data":{"user":{"login":"octocat"}}}`)
}

func respondRateLimited200(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"errors":[{"type":"RATE_LIMITED","message":"API rate limit exceeded"}]}`)
}

func respondSecondaryLimit403(w http.ResponseWriter) {
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message":"You have exceeded a secondary rate limit."}`)
}

func respondServerError(w http.ResponseWriter) {
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprint(w, `{"message":"Internal Server Error"}`)
}

func newTestRetrier(t *testing.T, s *scriptedServer, tokens []string) (*Retrier, func()) {
	t.Helper()
	server := httptest.NewServer(s.handler())
	transport := NewTransport(server.URL, 0)
	return NewRetrier(transport, tokens, sl.Discard()), server.Close
}

func TestRetrier_ExhaustsAllCredentials(t *testing.T) {
	script := &scriptedServer{responses: []func(http.ResponseWriter){
		respondRateLimited200, respondSecondaryLimit403, respondRateLimited200,
	}}
	retrier, cleanup := newTestRetrier(t, script, []string{"t1", "t2", "t3"})
	defer cleanup()

	resp, err := retrier.Do(context.Background(), "query {}", nil)

	assert.Nil(t, resp)
	assert.True(t, apperr.IsKind(err, apperr.KindMaxRetry))
	// Exactly one attempt per credential, in rotation order.
	assert.Equal(t, 3, script.attempts())
	assert.Equal(t, []string{"bearer t1", "bearer t2", "bearer t3"}, script.auths)
}

func TestRetrier_SucceedsOnSecondCredential(t *testing.T) {
	script := &scriptedServer{responses: []func(http.ResponseWriter){
		respondRateLimited200, respondOK,
	}}
	retrier, cleanup := newTestRetrier(t, script, []string{"t1", "t2", "t3"})
	defer cleanup()

	resp, err := retrier.Do(context.Background(), "query {}", nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "octocat")
	assert.Equal(t, 2, script.attempts())
}

func TestRetrier_DoesNotRetryFatalErrors(t *testing.T) {
	script := &scriptedServer{responses: []func(http.ResponseWriter){
		respondServerError,
	}}
	retrier, cleanup := newTestRetrier(t, script, []string{"t1", "t2"})
	defer cleanup()

	resp, err := retrier.Do(context.Background(), "query {}", nil)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.False(t, apperr.IsKind(err, apperr.KindMaxRetry))
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, 1, script.attempts())
}

func TestRetrier_SuccessWithGraphQLErrorsTerminates(t *testing.T) {
	// A 200 with a non-rate-limit errors array belongs to the classifier,
	// not the retrier.
	script := &scriptedServer{responses: []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"errors":[{"type":"NOT_FOUND","message":"nope"}]}`)
		},
	}}
	retrier, cleanup := newTestRetrier(t, script, []string{"t1", "t2"})
	defer cleanup()

	resp, err := retrier.Do(context.Background(), "query {}", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, script.attempts())
	assert.Contains(t, string(resp.Body), "NOT_FOUND")
}

func TestRetrier_NoTokensConfigured(t *testing.T) {
	script := &scriptedServer{responses: []func(http.ResponseWriter){respondOK}}
	retrier, cleanup := newTestRetrier(t, script, nil)
	defer cleanup()

	resp, err := retrier.Do(context.Background(), "query {}", nil)

	assert.Nil(t, resp)
	assert.True(t, apperr.IsKind(err, apperr.KindMaxRetry))
	assert.Equal(t, 0, script.attempts())
}

func TestClassifyAttempt(t *testing.T) {
	testCases := []struct {
		name string
		resp *Response
		err  error
		want attemptOutcome
	}{
		{
			name: "network error is fatal",
			err:  fmt.Errorf("dial tcp: connection refused"),
			want: outcomeFatal,
		},
		{
			name: "plain 200 succeeds",
			resp: &Response{StatusCode: http.StatusOK, Body: []byte(`{"data":{}}`)},
			want: outcomeSuccess,
		},
		{
			name: "200 with RATE_LIMITED rotates",
			resp: &Response{StatusCode: http.StatusOK, Body: []byte(`{"errors":[{"type":"RATE_LIMITED"}]}`)},
			want: outcomeRateLimited,
		},
		{
			name: "429 rotates",
			resp: &Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}},
			want: outcomeRateLimited,
		},
		{
			name: "403 with drained quota rotates",
			resp: &Response{
				StatusCode: http.StatusForbidden,
				Header:     http.Header{"X-Ratelimit-Remaining": []string{"0"}},
			},
			want: outcomeRateLimited,
		},
		{
			name: "403 unrelated to rate limiting is fatal",
			resp: &Response{
				StatusCode: http.StatusForbidden,
				Header:     http.Header{},
				Body:       []byte(`{"message":"Resource not accessible by integration"}`),
			},
			want: outcomeFatal,
		},
		{
			name: "401 is fatal",
			resp: &Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}, Body: []byte(`{"message":"Bad credentials"}`)},
			want: outcomeFatal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyAttempt(tc.resp, tc.err))
		})
	}
}
