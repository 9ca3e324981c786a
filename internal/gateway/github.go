package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/statscard/statscard/internal/apperr"
	"github.com/statscard/statscard/internal/domain"
	"github.com/statscard/statscard/internal/sl"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepoStats(ctx context.Context, owner, name string) (*domain.RepoStats, error)
	FetchUserStats(ctx context.Context, username string, includeAllCommits bool) (*domain.UserStats, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// GraphQL lookups go through the raw transport so the retrier and the
// classifier can see the full response envelope; the lifetime commit
// count goes through the REST search API.
type GitHubGateway struct {
	retrier    *Retrier
	restClient *github.Client
	logger     *slog.Logger
}

// Option adjusts gateway construction, mainly for tests.
type Option func(*gatewayConfig)

type gatewayConfig struct {
	endpoint string
	timeout  time.Duration
}

// WithEndpoint points the GraphQL transport at a different URL.
func WithEndpoint(endpoint string) Option {
	return func(c *gatewayConfig) { c.endpoint = endpoint }
}

// WithTimeout bounds each outbound attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *gatewayConfig) { c.timeout = timeout }
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The REST client authenticates with the first configured token and waits
// out secondary rate limits; the GraphQL path rotates tokens per attempt
// instead, so it gets the raw transport.
func NewGitHubGateway(tokens []string, logger *slog.Logger, opts ...Option) *GitHubGateway {
	cfg := gatewayConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := NewTransport(cfg.endpoint, cfg.timeout)

	var restClient *github.Client
	if len(tokens) > 0 {
		restClient = newRESTClient(tokens[0], cfg.timeout)
	}

	return &GitHubGateway{
		retrier:    NewRetrier(transport, tokens, logger),
		restClient: restClient,
		logger:     logger,
	}
}

// newRESTClient builds a go-github client whose transport waits out
// secondary rate limits and injects the bearer token.
func newRESTClient(token string, timeout time.Duration) *github.Client {
	// A nil base leaves oauth2 on http.DefaultTransport; the waiter only
	// fails on misconfigured options.
	var base http.RoundTripper
	if waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Hour, nil)); err == nil {
		base = waiter
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
		Timeout: timeout,
	}
	return github.NewClient(httpClient)
}

const repoStatsQuery = `
query repoStats($login: String!, $repo: String!) {
  user(login: $login) {
    repository(name: $repo) {
      ...RepoInfo
    }
  }
  organization(login: $login) {
    repository(name: $repo) {
      ...RepoInfo
    }
  }
}
fragment RepoInfo on Repository {
  name
  nameWithOwner
  description
  isPrivate
  isArchived
  isTemplate
  createdAt
  forkCount
  stargazers {
    totalCount
  }
  primaryLanguage {
    name
    color
  }
}`

type repoNode struct {
	Name          string    `json:"name"`
	NameWithOwner string    `json:"nameWithOwner"`
	Description   string    `json:"description"`
	IsPrivate     bool      `json:"isPrivate"`
	IsArchived    bool      `json:"isArchived"`
	IsTemplate    bool      `json:"isTemplate"`
	CreatedAt     time.Time `json:"createdAt"`
	ForkCount     int       `json:"forkCount"`
	Stargazers    struct {
		TotalCount int `json:"totalCount"`
	} `json:"stargazers"`
	PrimaryLanguage *struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"primaryLanguage"`
}

type repoStatsData struct {
	User *struct {
		Repository *repoNode `json:"repository"`
	} `json:"user"`
	Organization *struct {
		Repository *repoNode `json:"repository"`
	} `json:"organization"`
}

// FetchRepoStats resolves owner as either a user or an organization and
// returns the repository metadata. Private repositories are reported as
// not found rather than leaked.
func (g *GitHubGateway) FetchRepoStats(ctx context.Context, owner, name string) (*domain.RepoStats, error) {
	resp, err := g.retrier.Do(ctx, repoStatsQuery, map[string]any{
		"login": owner,
		"repo":  name,
	})
	if err != nil {
		return nil, err
	}

	raw, err := Classify(g.logger, resp, "Could not fetch repository.", "Make sure the repository exists and is public")
	if err != nil {
		return nil, err
	}

	var data repoStatsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode repository payload: %w", err)
	}

	node := pickRepository(data)
	if node == nil {
		return nil, apperr.NotFound("Could not fetch repository.", "Make sure the repository exists and is public")
	}

	stats := &domain.RepoStats{
		Name:          node.Name,
		NameWithOwner: node.NameWithOwner,
		Description:   node.Description,
		Stars:         node.Stargazers.TotalCount,
		Forks:         node.ForkCount,
		CreatedAt:     node.CreatedAt,
		IsArchived:    node.IsArchived,
		IsTemplate:    node.IsTemplate,
	}
	if node.PrimaryLanguage != nil {
		stats.PrimaryLanguage = &domain.Language{
			Name:  node.PrimaryLanguage.Name,
			Color: node.PrimaryLanguage.Color,
		}
	}
	return stats, nil
}

// pickRepository selects the visible repository from whichever root field
// resolved. The query asks for both, so exactly one side is populated for
// a valid owner.
func pickRepository(data repoStatsData) *repoNode {
	if data.User != nil && data.User.Repository != nil && !data.User.Repository.IsPrivate {
		return data.User.Repository
	}
	if data.Organization != nil && data.Organization.Repository != nil && !data.Organization.Repository.IsPrivate {
		return data.Organization.Repository
	}
	return nil
}

const userStatsQuery = `
query userStats($login: String!) {
  user(login: $login) {
    name
    login
    contributionsCollection {
      totalCommitContributions
      totalPullRequestReviewContributions
    }
    repositoriesContributedTo(first: 1, contributionTypes: [COMMIT, ISSUE, PULL_REQUEST, REPOSITORY]) {
      totalCount
    }
    pullRequests(first: 1) {
      totalCount
    }
    openIssues: issues(states: OPEN) {
      totalCount
    }
    closedIssues: issues(states: CLOSED) {
      totalCount
    }
    followers {
      totalCount
    }
    repositoryDiscussions {
      totalCount
    }
    repositoryDiscussionComments(onlyAnswers: true) {
      totalCount
    }
    repositories(first: 100, ownerAffiliations: OWNER, orderBy: {direction: DESC, field: STARGAZERS}) {
      totalCount
      nodes {
        name
        stargazers {
          totalCount
        }
      }
    }
  }
}`

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

type userStatsData struct {
	User *struct {
		Name                    string `json:"name"`
		Login                   string `json:"login"`
		ContributionsCollection struct {
			TotalCommitContributions            int `json:"totalCommitContributions"`
			TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
		} `json:"contributionsCollection"`
		RepositoriesContributedTo    totalCount `json:"repositoriesContributedTo"`
		PullRequests                 totalCount `json:"pullRequests"`
		OpenIssues                   totalCount `json:"openIssues"`
		ClosedIssues                 totalCount `json:"closedIssues"`
		Followers                    totalCount `json:"followers"`
		RepositoryDiscussions        totalCount `json:"repositoryDiscussions"`
		RepositoryDiscussionComments totalCount `json:"repositoryDiscussionComments"`
		Repositories                 struct {
			TotalCount int `json:"totalCount"`
			Nodes      []struct {
				Name       string     `json:"name"`
				Stargazers totalCount `json:"stargazers"`
			} `json:"nodes"`
		} `json:"repositories"`
	} `json:"user"`
}

// FetchUserStats aggregates a user's contribution counters. When
// includeAllCommits is set the commit count comes from the REST commit
// search instead of the last-year contributions collection; a failure
// there degrades to the GraphQL count rather than failing the card.
func (g *GitHubGateway) FetchUserStats(ctx context.Context, username string, includeAllCommits bool) (*domain.UserStats, error) {
	resp, err := g.retrier.Do(ctx, userStatsQuery, map[string]any{
		"login": username,
	})
	if err != nil {
		return nil, err
	}

	raw, err := Classify(g.logger, resp, "Could not fetch user.", "Make sure the provided username is not an organization")
	if err != nil {
		return nil, err
	}

	var data userStatsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode user payload: %w", err)
	}
	if data.User == nil {
		return nil, apperr.NotFound("Could not fetch user.", "Make sure the provided username is not an organization")
	}
	user := data.User

	totalStars := 0
	for _, node := range user.Repositories.Nodes {
		totalStars += node.Stargazers.TotalCount
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	stats := &domain.UserStats{
		Name:                     name,
		TotalStars:               totalStars,
		TotalCommits:             user.ContributionsCollection.TotalCommitContributions,
		TotalPRs:                 user.PullRequests.TotalCount,
		TotalReviews:             user.ContributionsCollection.TotalPullRequestReviewContributions,
		TotalIssues:              user.OpenIssues.TotalCount + user.ClosedIssues.TotalCount,
		TotalDiscussionsStarted:  user.RepositoryDiscussions.TotalCount,
		TotalDiscussionsAnswered: user.RepositoryDiscussionComments.TotalCount,
		ContributedTo:            user.RepositoriesContributedTo.TotalCount,
		Followers:                user.Followers.TotalCount,
	}

	if includeAllCommits {
		total, err := g.totalCommits(ctx, username)
		if err != nil {
			g.logger.Warn("falling back to last-year commit count", sl.Err(err))
		} else {
			stats.TotalCommits = total
		}
	}

	return stats, nil
}

// totalCommits counts a user's lifetime commits through the REST search API.
func (g *GitHubGateway) totalCommits(ctx context.Context, username string) (int, error) {
	if g.restClient == nil {
		return 0, fmt.Errorf("no REST client configured")
	}
	query := fmt.Sprintf("author:%s", username)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search commits with REST API: %w", err)
	}
	return result.GetTotal(), nil
}
