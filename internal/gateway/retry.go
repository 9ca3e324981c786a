package gateway

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/statscard/statscard/internal/apperr"
)

// attemptOutcome is the explicit result of classifying one transport
// attempt. The retrier drives a plain loop over it; rate-limited
// outcomes rotate to the next credential, fatal ones propagate.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeRateLimited
	outcomeFatal
)

// Retrier makes the transport resilient to per-credential rate limiting
// by rotating through the configured token list. It is credential
// failover, not backoff: there is no artificial delay between attempts,
// and each token is tried at most once per request.
type Retrier struct {
	transport *Transport
	tokens    []string
	logger    *slog.Logger
}

// NewRetrier creates a retrier over the given transport and tokens.
func NewRetrier(transport *Transport, tokens []string, logger *slog.Logger) *Retrier {
	return &Retrier{transport: transport, tokens: tokens, logger: logger}
}

// Do runs the query against the GraphQL endpoint, advancing to the next
// credential whenever an attempt is rate limited. An HTTP 200 terminates
// the loop regardless of GraphQL-level errors; those belong to the
// classifier. Any non-rate-limit failure propagates immediately.
func (r *Retrier) Do(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if len(r.tokens) == 0 {
		return nil, apperr.NoTokens()
	}

	for attempt, token := range r.tokens {
		resp, err := r.transport.Post(ctx, query, variables, token)

		switch classifyAttempt(resp, err) {
		case outcomeSuccess:
			return resp, nil
		case outcomeFatal:
			if err != nil {
				return nil, err
			}
			return nil, upstreamStatusError(resp)
		case outcomeRateLimited:
			r.logger.Warn("credential rate limited, rotating",
				slog.Int("attempt", attempt+1),
				slog.Int("credentials", len(r.tokens)),
			)
		}
	}

	return nil, apperr.MaxRetry()
}

// classifyAttempt maps one attempt to an explicit outcome.
func classifyAttempt(resp *Response, err error) attemptOutcome {
	if err != nil {
		return outcomeFatal
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if isRateLimitedEnvelope(resp) {
			return outcomeRateLimited
		}
		return outcomeSuccess
	case http.StatusTooManyRequests:
		// Primary rate limit.
		return outcomeRateLimited
	case http.StatusForbidden:
		// Secondary rate limits arrive as 403 with a drained quota header
		// or an explanatory message.
		if resp.Header.Get("X-RateLimit-Remaining") == "0" ||
			bytes.Contains(bytes.ToLower(resp.Body), []byte("rate limit")) {
			return outcomeRateLimited
		}
		return outcomeFatal
	default:
		return outcomeFatal
	}
}

// isRateLimitedEnvelope detects a GraphQL-level RATE_LIMITED error inside
// an otherwise successful response.
func isRateLimitedEnvelope(resp *Response) bool {
	env := resp.Envelope()
	return len(env.Errors) > 0 && env.Errors[0].Type == "RATE_LIMITED"
}

// upstreamStatusError describes a non-200 response that is not a rate
// limit. The handler boundary renders it as a generic upstream failure.
func upstreamStatusError(resp *Response) error {
	env := resp.Envelope()
	if env.Message != "" {
		return fmt.Errorf("github API responded with status %d: %s", resp.StatusCode, env.Message)
	}
	return fmt.Errorf("github API responded with status %d", resp.StatusCode)
}
