package pterodactyl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/panelbot/pkg/apierror"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(&Config{BaseURL: srv.URL + "/", APIKey: "ptla_test", PerPage: 2})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "missing base url", cfg: &Config{APIKey: "k"}, wantErr: true},
		{name: "invalid base url", cfg: &Config{BaseURL: "panel", APIKey: "k"}, wantErr: true},
		{name: "missing api key", cfg: &Config{BaseURL: "https://panel.example.com"}, wantErr: true},
		{name: "valid", cfg: &Config{BaseURL: "https://panel.example.com/", APIKey: "k"}},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://panel.example.com", c.BaseURL())
			assert.Equal(t, defaultPerPage, c.perPage)
		})
	}
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ptla_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/api/application/users/7", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"object":     "user",
			"attributes": map[string]any{"id": 7, "username": "alice_1", "email": "1@discord.user"},
		})
	})

	user, err := c.GetUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "alice_1", user.Username)
}

func TestClient_ListNodes_Pagination(t *testing.T) {
	t.Parallel()

	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		data := []map[string]any{}
		for i := 1; i <= 2; i++ {
			id := (page-1)*2 + i
			if id > 3 {
				break
			}
			data = append(data, map[string]any{
				"object":     "node",
				"attributes": map[string]any{"id": id, "name": fmt.Sprintf("node-%d", id)},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"object": "list",
			"data":   data,
			"meta": map[string]any{"pagination": map[string]any{
				"total": 3, "count": len(data), "per_page": 2, "current_page": page, "total_pages": 2,
			}},
		})
	})

	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "node-3", nodes[2].Name)
	assert.Equal(t, 2, calls)
}

func TestClient_FindUserByEmail(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42@discord.user", r.URL.Query().Get("filter[email]"))
		writeJSON(w, http.StatusOK, map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "user", "attributes": map[string]any{"id": 1, "email": "142@discord.user"}},
				{"object": "user", "attributes": map[string]any{"id": 2, "email": "42@Discord.User"}},
			},
			"meta": map[string]any{"pagination": map[string]any{"total_pages": 1}},
		})
	})

	t.Run("exact case insensitive match", func(t *testing.T) {
		user, err := c.FindUserByEmail(context.Background(), "42@discord.user")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, 2, user.ID)
	})
}

func TestClient_FindUserByEmail_NotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": []any{}})
	})

	user, err := c.FindUserByEmail(context.Background(), "nobody@discord.user")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_CreateServer(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/application/servers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req CreateServerRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "myserver", req.Name)
		assert.Equal(t, 11, req.Allocation.Default)
		assert.Equal(t, "main.py", req.Environment["PY_FILE"])

		writeJSON(w, http.StatusCreated, map[string]any{
			"object": "server",
			"attributes": map[string]any{
				"id": 99, "identifier": "abcd1234", "name": req.Name, "user": req.User, "allocation": 11,
			},
		})
	})

	server, err := c.CreateServer(context.Background(), &CreateServerRequest{
		Name:        "myserver",
		User:        3,
		Egg:         15,
		Environment: map[string]string{"PY_FILE": "main.py"},
		Allocation:  AllocationRequest{Default: 11},
	})
	require.NoError(t, err)
	assert.Equal(t, 99, server.ID)
	assert.Equal(t, "abcd1234", server.Identifier)
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		status   int
		body     string
		call     func(c *Client) error
		wantKind *apierror.Error
	}{
		{
			name:   "allocation conflict on create",
			status: http.StatusUnprocessableEntity,
			body:   `{"errors":[{"code":"DisplayException","status":"422","detail":"The allocation is already assigned to a server."}]}`,
			call: func(c *Client) error {
				_, err := c.CreateServer(context.Background(), &CreateServerRequest{Allocation: AllocationRequest{Default: 5}})
				return err
			},
			wantKind: apierror.ErrPlacementConflict,
		},
		{
			name:   "validation failure on create",
			status: http.StatusUnprocessableEntity,
			body:   `{"errors":[{"code":"ValidationException","status":"422","detail":"The name field is required."}]}`,
			call: func(c *Client) error {
				_, err := c.CreateServer(context.Background(), &CreateServerRequest{})
				return err
			},
			wantKind: apierror.ErrRemoteTransport,
		},
		{
			name:   "egg not found",
			status: http.StatusNotFound,
			body:   `{"errors":[{"code":"NotFoundHttpException","status":"404","detail":"not found"}]}`,
			call: func(c *Client) error {
				_, err := c.GetEgg(context.Background(), 5, 404)
				return err
			},
			wantKind: apierror.ErrEggNotFound,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			call: func(c *Client) error {
				_, err := c.ListNodes(context.Background())
				return err
			},
			wantKind: apierror.ErrRemoteTransport,
		},
		{
			name:   "delete not found",
			status: http.StatusNotFound,
			body:   ``,
			call: func(c *Client) error {
				return c.DeleteServer(context.Background(), 1)
			},
			wantKind: apierror.ErrRemoteTransport,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := tc.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantKind), "got %v", err)

			re, ok := ResponseErrorOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, re.StatusCode)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	c, err := New(&Config{BaseURL: baseURL, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.ListNests(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrRemoteTransport))
	assert.True(t, apierror.IsRetryable(err))
}

func TestClient_TransportErrorHidesDetail(t *testing.T) {
	t.Parallel()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	testcases := []struct {
		name    string
		baseURL func(t *testing.T) string
		wantRaw string
	}{
		{
			name: "server error",
			baseURL: func(t *testing.T) string {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte("SQLSTATE[HY000] connection refused"))
				}))
				t.Cleanup(srv.Close)
				return srv.URL
			},
			wantRaw: "panel returned status 500",
		},
		{
			name:    "dial failure",
			baseURL: func(t *testing.T) string { return closedURL },
			wantRaw: "panel request GET /users failed",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(&Config{BaseURL: tc.baseURL(t), APIKey: "k"})
			require.NoError(t, err)

			_, err = c.FindUserByEmail(context.Background(), "u@example.com")
			require.Error(t, err)

			apiErr, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, apierror.ErrRemoteTransport.Code, apiErr.Code)
			assert.Equal(t, apierror.ErrRemoteTransport.Message, apiErr.Message)
			assert.NotContains(t, apiErr.Message, "/users")
			assert.NotContains(t, apiErr.Message, "SQLSTATE")

			// 诊断信息只保留在原始错误里
			require.Error(t, apiErr.RawError)
			assert.Contains(t, apiErr.RawError.Error(), tc.wantRaw)
		})
	}
}

func TestResponseError_Message(t *testing.T) {
	t.Parallel()

	re := &ResponseError{StatusCode: 400, Body: " raw body ", Details: []ErrorDetail{{Detail: "a"}, {Detail: "b"}}}
	assert.Equal(t, "a; b", re.Message())

	re = &ResponseError{StatusCode: 400, Body: " raw body "}
	assert.Equal(t, "raw body", re.Message())
	assert.False(t, re.IsAllocationConflict())
	assert.True(t, re.IsClientError())
}

func TestServer_DefaultAllocation(t *testing.T) {
	t.Parallel()

	alias := "play.example.com"
	s := &Server{Allocation: 2}
	assert.Nil(t, s.DefaultAllocation())

	s.SetAllocations(
		Allocation{ID: 1, IP: "10.0.0.1", Port: 25565},
		Allocation{ID: 2, IP: "10.0.0.2", Alias: &alias, Port: 25566},
	)
	alloc := s.DefaultAllocation()
	require.NotNil(t, alloc)
	assert.Equal(t, "play.example.com", alloc.Host())
	assert.Equal(t, 25566, alloc.Port)
}

func TestEgg_ImageAndVariables(t *testing.T) {
	t.Parallel()

	egg := &Egg{DockerImages: map[string]string{"Python 3.12": "py312", "Python 3.11": "py311"}}
	assert.Equal(t, "py311", egg.Image())
	assert.Nil(t, egg.Variables())

	egg.DockerImage = "explicit"
	assert.Equal(t, "explicit", egg.Image())

	egg.SetVariables(EggVariable{EnvVariable: "PY_FILE", DefaultValue: "app.py"})
	vars := egg.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, "PY_FILE", vars[0].EnvVariable)
}
