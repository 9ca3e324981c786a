package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// PATStatus is the rate-limit state of one configured credential.
type PATStatus struct {
	Name      string    `json:"name"`
	Valid     bool      `json:"valid"`
	Limit     int       `json:"limit,omitempty"`
	Remaining int       `json:"remaining,omitempty"`
	ResetAt   time.Time `json:"resetAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// PATInfo aggregates the status of every configured credential.
type PATInfo struct {
	Statuses        []PATStatus `json:"statuses"`
	ValidCount      int         `json:"validCount"`
	TotalRemaining  int         `json:"totalRemaining"`
	MedianRemaining float64     `json:"medianRemaining"`
	MinRemaining    float64     `json:"minRemaining"`
}

// PATChecker queries the GraphQL rateLimit object once per credential so
// operators can see which tokens are close to exhaustion.
type PATChecker struct {
	tokens   []string
	endpoint string
	logger   *slog.Logger
}

// NewPATChecker creates a checker over the configured tokens.
func NewPATChecker(tokens []string, logger *slog.Logger) *PATChecker {
	return &PATChecker{tokens: tokens, logger: logger}
}

// WithCheckerEndpoint points the checker at a different GraphQL URL, for tests.
func (c *PATChecker) WithCheckerEndpoint(endpoint string) *PATChecker {
	c.endpoint = endpoint
	return c
}

// Check queries all credentials concurrently. An invalid token is a
// result, not a failure; only a canceled context aborts the check.
func (c *PATChecker) Check(ctx context.Context) (*PATInfo, error) {
	statuses := make([]PATStatus, len(c.tokens))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, token := range c.tokens {
		i, token := i, token
		eg.Go(func() error {
			statuses[i] = c.checkOne(egCtx, i+1, token)
			return egCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("pat check aborted: %w", err)
	}

	info := &PATInfo{Statuses: statuses}
	var remaining []float64
	for _, s := range statuses {
		if !s.Valid {
			continue
		}
		info.ValidCount++
		info.TotalRemaining += s.Remaining
		remaining = append(remaining, float64(s.Remaining))
	}
	if len(remaining) > 0 {
		// Median and minimum give a quick read on how evenly quota is
		// spread across the rotation.
		info.MedianRemaining, _ = stats.Median(remaining)
		info.MinRemaining, _ = stats.Min(remaining)
	}
	return info, nil
}

func (c *PATChecker) checkOne(ctx context.Context, index int, token string) PATStatus {
	status := PATStatus{Name: fmt.Sprintf("PAT_%d", index)}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)

	var client *githubv4.Client
	if c.endpoint != "" {
		client = githubv4.NewEnterpriseClient(c.endpoint, httpClient)
	} else {
		client = githubv4.NewClient(httpClient)
	}

	var q struct {
		RateLimit struct {
			Limit     githubv4.Int
			Remaining githubv4.Int
			ResetAt   githubv4.DateTime
		}
	}
	if err := client.Query(ctx, &q, nil); err != nil {
		c.logger.Warn("pat check failed", slog.String("pat", status.Name))
		status.Error = err.Error()
		return status
	}

	status.Valid = true
	status.Limit = int(q.RateLimit.Limit)
	status.Remaining = int(q.RateLimit.Remaining)
	status.ResetAt = q.RateLimit.ResetAt.Time
	return status
}
