package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/KOFI-GYIMAH/github-client/internal/github"
	"github.com/KOFI-GYIMAH/github-client/pkg/errors"
	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
	"github.com/gorilla/mux"
)

type GitHubHandler struct {
	client GitHubAPI
}

func NewGitHubHandler(client GitHubAPI) *GitHubHandler {
	return &GitHubHandler{client: client}
}

func (h *GitHubHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{name}", h.getUser).Methods("GET")
	r.HandleFunc("/users/{name}/repos", h.getRepos).Methods("GET")
	r.HandleFunc("/repos/{name}/{repo}", h.getRepo).Methods("GET")
	r.HandleFunc("/user/repos", h.createRepo).Methods("POST")
}

func writeSuccess(w http.ResponseWriter, status int, data any, message ...string) {
	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	if len(message) > 0 {
		resp.Message = message[0]
	}

	// * Encode before any header goes out so a body GitHub sent that is not
	// * JSON still gets an error response.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		logger.Error("Error encoding GitHub API response: %v", err)
		errors.WriteHTTPError(w, errors.Remote(
			"Invalid response from GitHub API",
			"The GitHub API answered with a body that is not valid JSON",
			http.StatusBadGateway,
			nil,
			err,
		))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// getUser godoc
// @Summary Get User
// @Description Fetch a GitHub user profile, returned exactly as GitHub sent it
// @Tags Users
// @Produce json
// @Param name path string true "User Name"
// @Success 200 {object} APIResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Failure 502 {object} errors.HTTPErrorResponse
// @Router /users/{name} [get]
func (h *GitHubHandler) getUser(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	user, err := h.client.GetUser(r.Context(), name)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Fetched user %s", name)
	writeSuccess(w, http.StatusOK, user, "Successfully fetched user")
}

// getRepos godoc
// @Summary List Repositories
// @Description List the public repositories of a GitHub user in GitHub's order
// @Tags Repositories
// @Produce json
// @Param name path string true "User Name"
// @Success 200 {object} APIResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Failure 502 {object} errors.HTTPErrorResponse
// @Router /users/{name}/repos [get]
func (h *GitHubHandler) getRepos(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	repos, err := h.client.GetRepos(r.Context(), name)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Fetched repositories of %s", name)
	writeSuccess(w, http.StatusOK, repos, "Successfully fetched repositories")
}

// getRepo godoc
// @Summary Get Repository
// @Description Fetch a single repository from GitHub
// @Tags Repositories
// @Produce json
// @Param name path string true "Owner Name"
// @Param repo path string true "Repository Name"
// @Success 200 {object} APIResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Failure 502 {object} errors.HTTPErrorResponse
// @Router /repos/{name}/{repo} [get]
func (h *GitHubHandler) getRepo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]
	repoName := vars["repo"]

	repo, err := h.client.GetRepo(r.Context(), name, repoName)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Fetched repository %s/%s", name, repoName)
	writeSuccess(w, http.StatusOK, repo, "Successfully fetched repository")
}

// createRepo godoc
// @Summary Create Repository
// @Description Forward a repository creation payload to GitHub unchanged
// @Tags Repositories
// @Accept json
// @Produce json
// @Param repository body object true "GitHub repository creation payload"
// @Success 201 {object} APIResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 401 {object} errors.HTTPErrorResponse
// @Failure 422 {object} errors.HTTPErrorResponse
// @Router /user/repos [post]
func (h *GitHubHandler) createRepo(w http.ResponseWriter, r *http.Request) {
	var payload github.RepoCreationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn("Rejected create request: %v", err)
		errors.WriteHTTPError(w, errors.Validation("Invalid request body"))
		return
	}

	repo, err := h.client.CreateRepo(r.Context(), payload)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Created repository")
	writeSuccess(w, http.StatusCreated, repo, "Repository created")
}
