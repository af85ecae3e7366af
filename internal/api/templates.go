package api

import (
	"context"
	"fmt"

	"github.com/dayplan/dayplan-cli/internal/models"
)

// TemplatesService provides read-only access to the /templates endpoints.
type TemplatesService struct {
	client *Client
}

// Templates returns the templates service.
func (c *Client) Templates() *TemplatesService {
	return &TemplatesService{client: c}
}

// List fetches all templates.
func (s *TemplatesService) List(ctx context.Context) ([]models.Template, error) {
	resp, err := s.client.Get(ctx, "/templates")
	if err != nil {
		return nil, err
	}

	var templates []models.Template
	if err := resp.UnmarshalData(&templates); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// Get fetches a single template.
func (s *TemplatesService) Get(ctx context.Context, id int64) (*models.Template, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("/templates/%d", id))
	if err != nil {
		return nil, err
	}

	var tmpl models.Template
	if err := resp.UnmarshalData(&tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &tmpl, nil
}
