package github

import (
	"encoding/json"
	"time"
)

// ResponseBody is the undecoded JSON returned by the GitHub API.
type ResponseBody json.RawMessage

func (b ResponseBody) Decode(v any) error {
	return json.Unmarshal(b, v)
}

func (b ResponseBody) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

func (b ResponseBody) String() string {
	return string(b)
}

// RepoCreationPayload is sent as-is to POST /user/repos. Its fields are
// whatever the GitHub API accepts (name, description, private, ...).
type RepoCreationPayload map[string]any

type User struct {
	Login       string    `json:"login"`
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Private         bool      `json:"private"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	ForksCount      int       `json:"forks_count"`
	StargazersCount int       `json:"stargazers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	WatchersCount   int       `json:"watchers_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// apiError is the error envelope GitHub returns on 4xx/5xx responses.
type apiError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
