// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// RepoQuery identifies a single repository. Both fields are non-empty;
// parsing rejects anything else before a request is built.
type RepoQuery struct {
	Owner string
	Name  string
}

// Language is the primary language GitHub reports for a repository.
type Language struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RepoStats holds the metadata rendered on a repository card.
type RepoStats struct {
	Name            string    `json:"name"`
	NameWithOwner   string    `json:"nameWithOwner"`
	Description     string    `json:"description"`
	Stars           int       `json:"stars"`
	Forks           int       `json:"forks"`
	PrimaryLanguage *Language `json:"primaryLanguage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	IsArchived      bool      `json:"isArchived"`
	IsTemplate      bool      `json:"isTemplate"`
}

// UserStats holds the aggregate contribution counts rendered on a stats
// card. Rank is derived from the other fields and is always present.
type UserStats struct {
	Name                     string `json:"name"`
	TotalStars               int    `json:"totalStars"`
	TotalCommits             int    `json:"totalCommits"`
	TotalPRs                 int    `json:"totalPRs"`
	TotalReviews             int    `json:"totalReviews"`
	TotalIssues              int    `json:"totalIssues"`
	TotalDiscussionsStarted  int    `json:"totalDiscussionsStarted"`
	TotalDiscussionsAnswered int    `json:"totalDiscussionsAnswered"`
	ContributedTo            int    `json:"contributedTo"`
	Followers                int    `json:"followers"`
	Rank                     Rank   `json:"rank"`
}
