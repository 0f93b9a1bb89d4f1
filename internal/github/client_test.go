package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KOFI-GYIMAH/github-client/pkg/errors"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *recordingLogger, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	log := &recordingLogger{}
	opts = append([]Option{WithBaseURL(server.URL), WithLogger(log)}, opts...)
	return NewClient(opts...), log, &calls
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	assert.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Empty(t, client.headers)

	httpClient, ok := client.httpClient.(*http.Client)
	require.True(t, ok)
	assert.Zero(t, httpClient.Timeout)
}

func TestClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		call    func(c *Client) (ResponseBody, error)
		message string
	}{
		{
			name:    "GetUser with empty name",
			call:    func(c *Client) (ResponseBody, error) { return c.GetUser(context.Background(), "") },
			message: "User name is required",
		},
		{
			name:    "GetRepos with empty name",
			call:    func(c *Client) (ResponseBody, error) { return c.GetRepos(context.Background(), "") },
			message: "User name is required",
		},
		{
			name:    "GetRepo with empty name",
			call:    func(c *Client) (ResponseBody, error) { return c.GetRepo(context.Background(), "", "Hello-World") },
			message: "User name and repo name are required",
		},
		{
			name:    "GetRepo with empty repo",
			call:    func(c *Client) (ResponseBody, error) { return c.GetRepo(context.Background(), "octocat", "") },
			message: "User name and repo name are required",
		},
		{
			name:    "GetRepo with both empty",
			call:    func(c *Client) (ResponseBody, error) { return c.GetRepo(context.Background(), "", "") },
			message: "User name and repo name are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, log, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			body, err := tt.call(client)

			require.Error(t, err)
			assert.Nil(t, body)
			assert.True(t, apperrors.IsValidation(err))
			assert.False(t, apperrors.IsRemote(err))
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, int32(0), atomic.LoadInt32(calls))
			assert.Len(t, log.Lines(), 1)
		})
	}
}

func TestClient_GetUser(t *testing.T) {
	client, log, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/octocat", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"login":"octocat"}`))
	})

	body, err := client.GetUser(context.Background(), "octocat")

	require.NoError(t, err)
	assert.JSONEq(t, `{"login":"octocat"}`, body.String())
	assert.Empty(t, log.Lines())

	var user User
	require.NoError(t, body.Decode(&user))
	assert.Equal(t, "octocat", user.Login)
}

func TestClient_GetRepos_PreservesOrder(t *testing.T) {
	payload := `[{"id":2,"name":"zeta"},{"id":1,"name":"alpha"}]`
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(payload))
	})

	body, err := client.GetRepos(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Equal(t, payload, body.String())

	var repos []Repository
	require.NoError(t, body.Decode(&repos))
	require.Len(t, repos, 2)
	assert.Equal(t, "zeta", repos[0].Name)
	assert.Equal(t, "alpha", repos[1].Name)
}

func TestClient_GetRepo(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse func(w http.ResponseWriter, r *http.Request)
		expectedBody   string
		expectedError  string
		expectedStatus int
	}{
		{
			name: "successful repository fetch",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/octocat/Hello-World", r.URL.Path)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"id":1296269,"full_name":"octocat/Hello-World"}`))
			},
			expectedBody: `{"id":1296269,"full_name":"octocat/Hello-World"}`,
		},
		{
			name: "repository not found",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`))
			},
			expectedError:  "Not Found",
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "server error without body",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedError:  "Internal Server Error",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, log, calls := newTestClient(t, tt.serverResponse)

			body, err := client.GetRepo(context.Background(), "octocat", "Hello-World")

			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Nil(t, body)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.True(t, apperrors.IsRemote(err))

				var appErr *apperrors.ApplicationError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.expectedStatus, appErr.StatusCode)

				lines := log.Lines()
				require.Len(t, lines, 1)
				assert.Contains(t, lines[0], tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tt.expectedBody, body.String())
			assert.Empty(t, log.Lines())
		})
	}
}

func TestClient_CreateRepo(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"foo"}`, string(raw))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"name":"foo"}`))
	})

	body, err := client.CreateRepo(context.Background(), RepoCreationPayload{"name": "foo"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"foo"}`, body.String())
}

func TestClient_CreateRepo_RemoteRejection(t *testing.T) {
	client, log, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Repository creation failed."}`))
	})

	body, err := client.CreateRepo(context.Background(), RepoCreationPayload{})

	require.Error(t, err)
	assert.Nil(t, body)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, err.Error(), "Repository creation failed.")
	assert.Len(t, log.Lines(), 1)
}

func TestClient_CreateRepo_UnencodablePayload(t *testing.T) {
	client, log, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := client.CreateRepo(context.Background(), RepoCreationPayload{"bad": make(chan int)})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	assert.Len(t, log.Lines(), 1)
}

func TestClient_Headers(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		validateReq func(t *testing.T, r *http.Request)
	}{
		{
			name: "no headers by default",
			validateReq: func(t *testing.T, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
				assert.Empty(t, r.Header.Get("X-GitHub-Api-Version"))
			},
		},
		{
			name: "token and custom headers",
			opts: []Option{
				WithToken("test-token"),
				WithHeader("Accept", "application/vnd.github+json"),
				WithHeader("X-GitHub-Api-Version", "2022-11-28"),
			},
			validateReq: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
				assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
			},
		},
		{
			name: "empty token is ignored",
			opts: []Option{WithToken("")},
			validateReq: func(t *testing.T, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				tt.validateReq(t, r)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{}`))
			}, tt.opts...)

			_, err := client.GetUser(context.Background(), "octocat")
			require.NoError(t, err)
		})
	}
}

func TestClient_EscapesPathSegments(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo%2Fcat/hello%20world", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	_, err := client.GetRepo(context.Background(), "octo/cat", "hello world")
	require.NoError(t, err)
}

func TestClient_NoCaching(t *testing.T) {
	client, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"login":"octocat"}`))
	})

	first, err := client.GetUser(context.Background(), "octocat")
	require.NoError(t, err)
	second, err := client.GetUser(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	first[0] = 'X'
	assert.NotEqual(t, first, second)
}

func TestClient_ConcurrentCalls(t *testing.T) {
	client, log, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			body, err := client.GetUser(context.Background(), name)
			assert.NoError(t, err)
			assert.JSONEq(t, fmt.Sprintf(`{"path":"/users/%s"}`, name), body.String())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(calls))
	assert.Empty(t, log.Lines())
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	log := &recordingLogger{}
	client := NewClient(WithBaseURL(baseURL), WithLogger(log))

	_, err := client.GetUser(context.Background(), "octocat")

	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))

	var appErr *apperrors.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.RefTransport, appErr.Reference)
	assert.Zero(t, appErr.StatusCode)
	assert.Len(t, log.Lines(), 1)
}

func TestClient_Context_Cancellation(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetUser(ctx, "octocat")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTraceTransport(t *testing.T) {
	var lines []string
	debug := debugFunc(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "59")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Transport: TraceTransport(nil, debug)}),
	)

	_, err := client.GetUser(context.Background(), "octocat")

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "GET /users/octocat 200")
	assert.Contains(t, lines[0], "remaining: 59")
}

type debugFunc func(format string, args ...any)

func (f debugFunc) Debug(format string, args ...any) { f(format, args...) }

func BenchmarkClient_GetRepo(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"full_name":"octocat/Hello-World"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := client.GetRepo(context.Background(), "octocat", "Hello-World"); err != nil {
			b.Fatal(err)
		}
	}
}
