package handler

import (
	"context"

	"github.com/KOFI-GYIMAH/github-client/internal/github"
)

// GitHubAPI is the subset of *github.Client the handlers call.
type GitHubAPI interface {
	GetUser(ctx context.Context, name string) (github.ResponseBody, error)
	GetRepos(ctx context.Context, name string) (github.ResponseBody, error)
	GetRepo(ctx context.Context, name, repo string) (github.ResponseBody, error)
	CreateRepo(ctx context.Context, repoData github.RepoCreationPayload) (github.ResponseBody, error)
}

type APIResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
