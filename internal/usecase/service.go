// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/statscard/statscard/internal/apperr"
	"github.com/statscard/statscard/internal/domain"
	"github.com/statscard/statscard/internal/gateway"
)

// StatsService is the use case for building card payloads.
// It validates caller input before any network call, orchestrates the
// gateway and derives the rank for user stats.
type StatsService struct {
	fetcher gateway.Fetcher
	logger  *slog.Logger
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(fetcher gateway.Fetcher, logger *slog.Logger) *StatsService {
	return &StatsService{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ParseRepoID splits an "owner/name" identifier. Anything other than
// exactly one separator with two non-empty sides is rejected, so
// malformed identifiers never reach the transport.
func ParseRepoID(raw string) (domain.RepoQuery, error) {
	if raw == "" {
		return domain.RepoQuery{}, apperr.MissingParam("repo")
	}
	owner, name, found := strings.Cut(raw, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return domain.RepoQuery{}, apperr.MissingParam("repo")
	}
	return domain.RepoQuery{Owner: owner, Name: name}, nil
}

// RepoStats fetches the metadata for one repository identified as
// "owner/name".
func (s *StatsService) RepoStats(ctx context.Context, rawRepo string) (*domain.RepoStats, error) {
	query, err := ParseRepoID(rawRepo)
	if err != nil {
		return nil, err
	}
	return s.fetcher.FetchRepoStats(ctx, query.Owner, query.Name)
}

// UserStats fetches a user's contribution counters and attaches the
// derived rank.
func (s *StatsService) UserStats(ctx context.Context, username string, includeAllCommits bool) (*domain.UserStats, error) {
	if username == "" {
		return nil, apperr.MissingParam("username")
	}

	stats, err := s.fetcher.FetchUserStats(ctx, username, includeAllCommits)
	if err != nil {
		return nil, err
	}

	stats.Rank = domain.CalculateRank(domain.RankInput{
		AllCommits: includeAllCommits,
		Commits:    stats.TotalCommits,
		PRs:        stats.TotalPRs,
		Issues:     stats.TotalIssues,
		Reviews:    stats.TotalReviews,
		Stars:      stats.TotalStars,
		Followers:  stats.Followers,
	})
	return stats, nil
}
