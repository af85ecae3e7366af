package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/output"
)

// TasksService provides typed access to the /tasks endpoints.
type TasksService struct {
	client *Client
}

// Tasks returns the tasks service.
func (c *Client) Tasks() *TasksService {
	return &TasksService{client: c}
}

// TaskFilter selects tasks by a single date or an inclusive date range.
// Exactly one form applies: End empty means single-date, End set means
// range with Start as the lower bound.
type TaskFilter struct {
	Date  string
	Start string
	End   string
}

// CreateTaskRequest holds the fields for a new task.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
	Comment     string `json:"comment,omitempty"`
}

// TaskPatch is a partial update. Nil fields are not sent, so the server
// only touches what was set. An explicit empty string clears a field
// (valid for comment, rejected for description).
type TaskPatch struct {
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Status      *string `json:"status,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

// List fetches tasks matching the filter, sorted ascending by date.
// Server return order breaks ties, so equal dates keep their fetched
// order.
func (s *TasksService) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	switch {
	case filter.End != "":
		start, err := normalizeISODate(filter.Start)
		if err != nil {
			return nil, err
		}
		end, err := normalizeISODate(filter.End)
		if err != nil {
			return nil, err
		}
		q.Set("startDate", start)
		q.Set("endDate", end)
	case filter.Date != "":
		date, err := normalizeISODate(filter.Date)
		if err != nil {
			return nil, err
		}
		q.Set("date", date)
	}

	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := resp.UnmarshalData(&tasks); err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}

	SortTasksByDate(tasks)
	return tasks, nil
}

// Get fetches a single task.
func (s *TasksService) Get(ctx context.Context, id int64) (*models.Task, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("/tasks/%d", id))
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := resp.UnmarshalData(&task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// Create creates a task. Description and date are required.
func (s *TasksService) Create(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if req.Description == "" {
		return nil, output.ErrUsage("task description must not be empty")
	}
	date, err := normalizeISODate(req.Date)
	if err != nil {
		return nil, err
	}
	req.Date = date

	resp, err := s.client.Post(ctx, "/tasks", req)
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := resp.UnmarshalData(&task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// Update applies a partial update to a task.
func (s *TasksService) Update(ctx context.Context, id int64, patch TaskPatch) (*models.Task, error) {
	if patch.Description != nil && *patch.Description == "" {
		return nil, output.ErrUsage("task description must not be empty")
	}
	if patch.Date != nil {
		date, err := normalizeISODate(*patch.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}
	if patch.Status != nil && *patch.Status != models.StatusTodo && *patch.Status != models.StatusDone {
		return nil, output.ErrUsage(fmt.Sprintf("invalid status %q", *patch.Status))
	}

	resp, err := s.client.Patch(ctx, fmt.Sprintf("/tasks/%d", id), patch)
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := resp.UnmarshalData(&task); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	return &task, nil
}

// SetStatus flips a task to the given status via a partial update.
func (s *TasksService) SetStatus(ctx context.Context, id int64, status string) (*models.Task, error) {
	return s.Update(ctx, id, TaskPatch{Status: &status})
}

// Delete removes a task.
func (s *TasksService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, fmt.Sprintf("/tasks/%d", id))
	return err
}

// SortTasksByDate sorts tasks ascending by date, keeping the incoming
// order for equal dates. Dates are normalized ISO strings so lexical
// comparison is chronological.
func SortTasksByDate(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Date < tasks[j].Date
	})
}

// normalizeISODate enforces zero-padded ISO-8601 dates at the API
// boundary. Lexical ordering of task dates is only chronological when
// every date is in canonical form, so anything else is rejected here.
func normalizeISODate(s string) (string, error) {
	if s == "" {
		return "", output.ErrUsage("date must not be empty")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", output.ErrUsage(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t.Format("2006-01-02"), nil
}
