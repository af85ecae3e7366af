package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/auth"
	"github.com/dayplan/dayplan-cli/internal/config"
	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/output"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	t.Setenv("DAYPLAN_TOKEN", "test-token")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.BaseURL = server.URL
	cfg.CacheEnabled = false

	return NewClient(cfg, auth.NewManager())
}

func newCachingTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	t.Setenv("DAYPLAN_TOKEN", "test-token")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.BaseURL = server.URL
	cfg.CacheEnabled = true
	cfg.CacheDir = t.TempDir()

	return NewClient(cfg, auth.NewManager())
}

func TestGetSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))

	_, err := client.Get(context.Background(), "/tasks")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestUnauthorizedInvokesHook(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	hookFired := false
	client.OnUnauthorized(func() { hookFired = true })

	_, err := client.Get(context.Background(), "/tasks")
	require.Error(t, err)
	assert.True(t, hookFired)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
}

func TestNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Get(context.Background(), "/tasks/999")
	require.Error(t, err)

	e := output.AsError(err)
	assert.Equal(t, output.CodeNotFound, e.Code)
	assert.False(t, e.Retryable)
}

func TestServerErrorMessagePassthrough(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "description is required"}`))
	}))

	_, err := client.Post(context.Background(), "/tasks", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, output.AsError(err).Message, "description is required")
}

func TestETagCacheServes304FromCache(t *testing.T) {
	requests := 0
	client := newCachingTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`[{"id": 1}]`))
	}))

	first, err := client.Get(context.Background(), "/templates")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := client.Get(context.Background(), "/templates")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, 2, requests)
}

func TestObserverSeesRequests(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	var observed []int
	client.SetObserver(observerFunc(func(method, url string, status int, elapsed time.Duration, fromCache bool) {
		observed = append(observed, status)
	}))

	_, err := client.Get(context.Background(), "/tasks")
	require.NoError(t, err)
	assert.Equal(t, []int{200}, observed)
}

type observerFunc func(method, url string, status int, elapsed time.Duration, fromCache bool)

func (f observerFunc) ObserveRequest(method, url string, status int, elapsed time.Duration, fromCache bool) {
	f(method, url, status, elapsed, fromCache)
}

func TestTasksListSortsAscendingByDate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Task{
			{ID: 3, Description: "c", Date: "2024-01-12", Status: models.StatusTodo},
			{ID: 1, Description: "a", Date: "2024-01-10", Status: models.StatusTodo},
			{ID: 2, Description: "b", Date: "2024-01-10", Status: models.StatusDone},
		})
	}))

	tasks, err := client.Tasks().List(context.Background(), TaskFilter{Date: "2024-01-10"})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID},
		"ascending by date, ties keep server order")
}

func TestTasksListFilterEncoding(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	_, err := client.Tasks().List(context.Background(), TaskFilter{Start: "2024-01-10", End: "2024-01-15"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "startDate=2024-01-10")
	assert.Contains(t, gotQuery, "endDate=2024-01-15")
}

func TestTasksListRejectsMalformedDate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an invalid date")
	}))

	_, err := client.Tasks().List(context.Background(), TaskFilter{Date: "2024-1-5"})
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestCreateTaskValidation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for invalid input")
	}))

	_, err := client.Tasks().Create(context.Background(), CreateTaskRequest{Date: "2024-01-10"})
	require.Error(t, err, "empty description rejected")

	_, err = client.Tasks().Create(context.Background(), CreateTaskRequest{Description: "x"})
	require.Error(t, err, "missing date rejected")
}

func TestUpdateTaskSendsOnlySetFields(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id": 1}`))
	}))

	comment := ""
	_, err := client.Tasks().Update(context.Background(), 1, TaskPatch{Comment: &comment})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"comment": ""}, gotBody,
		"empty comment is a valid clear, other fields omitted")
}

func TestUpdateTaskRejectsEmptyDescription(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made")
	}))

	empty := ""
	_, err := client.Tasks().Update(context.Background(), 1, TaskPatch{Description: &empty})
	require.Error(t, err)
}

func TestProjectTasksSorted(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/7/tasks", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Task{
			{ID: 2, Date: "2024-03-02"},
			{ID: 1, Date: "2024-03-01"},
		})
	}))

	tasks, err := client.Projects().Tasks(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
}

func TestCreateProjectPassesTemplateReference(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id": 5, "title": "Launch"}`))
	}))

	_, err := client.Projects().Create(context.Background(), CreateProjectRequest{
		Title:      "Launch",
		AnchorDate: "2024-06-01",
		TemplateID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), gotBody["templateId"])
}

func TestTemplatesList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Template{
			{ID: 1, Name: "Sprint", TaskDefinitions: []models.TaskDef{{Description: "kickoff"}}},
		})
	}))

	templates, err := client.Templates().List(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Sprint", templates[0].Name)
	assert.Len(t, templates[0].TaskDefinitions, 1)
}
