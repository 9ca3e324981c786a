// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGraphQLEndpoint is the fixed GitHub GraphQL endpoint.
const DefaultGraphQLEndpoint = "https://api.github.com/graphql"

// DefaultFetchTimeout bounds a single outbound attempt so the retry loop
// has a predictable worst-case latency.
const DefaultFetchTimeout = 10 * time.Second

// GraphQLRequest is the wire shape of a GraphQL POST body.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is one entry of the top-level errors array the API may
// return alongside (or instead of) data. Type is optional; unrecognized
// shapes fall through to the generic classification.
type GraphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Envelope is the decoded GraphQL response body. Data stays raw so the
// classifier can hand it through untouched on success.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
	// Message is set on non-GraphQL REST-style error bodies such as
	// {"message": "Bad credentials"}.
	Message string `json:"message"`
}

// Response is the full result of one transport attempt.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Envelope decodes the response body. An undecodable body yields an
// empty envelope rather than an error; classification treats it as an
// unknown shape.
func (r *Response) Envelope() Envelope {
	var env Envelope
	_ = json.Unmarshal(r.Body, &env)
	return env
}

// Transport performs single-shot GraphQL POSTs. It carries no retry
// logic; the Retrier layers credential rotation on top of it.
type Transport struct {
	endpoint string
	client   *http.Client
}

// NewTransport creates a transport against the given endpoint. An empty
// endpoint selects the public GitHub API.
func NewTransport(endpoint string, timeout time.Duration) *Transport {
	if endpoint == "" {
		endpoint = DefaultGraphQLEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Transport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Post issues one authenticated GraphQL request and returns the full
// response regardless of status code. Only network-level failures are
// returned as errors.
func (t *Transport) Post(ctx context.Context, query string, variables map[string]any, token string) (*Response, error) {
	payload, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "bearer "+token)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GraphQL response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
