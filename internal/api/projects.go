package api

import (
	"context"
	"fmt"

	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/output"
)

// ProjectsService provides typed access to the /projects endpoints.
type ProjectsService struct {
	client *Client
}

// Projects returns the projects service.
func (c *Client) Projects() *ProjectsService {
	return &ProjectsService{client: c}
}

// CreateProjectRequest holds the fields for a new project. TemplateID
// is passed through as a reference; task seeding happens server-side.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	AnchorDate  string `json:"anchorDate"`
	Description string `json:"description,omitempty"`
	TemplateID  int64  `json:"templateId,omitempty"`
}

// ProjectPatch is a partial update with nil meaning "leave unchanged".
type ProjectPatch struct {
	Title       *string `json:"title,omitempty"`
	AnchorDate  *string `json:"anchorDate,omitempty"`
	Description *string `json:"description,omitempty"`
}

// List fetches all projects.
func (s *ProjectsService) List(ctx context.Context) ([]models.Project, error) {
	resp, err := s.client.Get(ctx, "/projects")
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := resp.UnmarshalData(&projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects: %w", err)
	}
	return projects, nil
}

// Get fetches a single project.
func (s *ProjectsService) Get(ctx context.Context, id int64) (*models.Project, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("/projects/%d", id))
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := resp.UnmarshalData(&project); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &project, nil
}

// Create creates a project. Title and anchor date are required.
func (s *ProjectsService) Create(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	if req.Title == "" {
		return nil, output.ErrUsage("project title must not be empty")
	}
	anchor, err := normalizeISODate(req.AnchorDate)
	if err != nil {
		return nil, err
	}
	req.AnchorDate = anchor

	resp, err := s.client.Post(ctx, "/projects", req)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := resp.UnmarshalData(&project); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &project, nil
}

// Update applies a partial update to a project.
func (s *ProjectsService) Update(ctx context.Context, id int64, patch ProjectPatch) (*models.Project, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, output.ErrUsage("project title must not be empty")
	}
	if patch.AnchorDate != nil {
		anchor, err := normalizeISODate(*patch.AnchorDate)
		if err != nil {
			return nil, err
		}
		patch.AnchorDate = &anchor
	}

	resp, err := s.client.Patch(ctx, fmt.Sprintf("/projects/%d", id), patch)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := resp.UnmarshalData(&project); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &project, nil
}

// Delete removes a project and its tasks.
func (s *ProjectsService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, fmt.Sprintf("/projects/%d", id))
	return err
}

// Tasks fetches the tasks belonging to a project, sorted ascending by
// date like the task list.
func (s *ProjectsService) Tasks(ctx context.Context, id int64) ([]models.Task, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("/projects/%d/tasks", id))
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := resp.UnmarshalData(&tasks); err != nil {
		return nil, fmt.Errorf("failed to parse project tasks: %w", err)
	}

	SortTasksByDate(tasks)
	return tasks, nil
}
