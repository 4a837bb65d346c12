package api

import (
	"context"
	"net/http"

	"github.com/zanvidmar/evidenca/internal/model"
)

// ListAssignments returns all assignments, optionally filtered by device.
func (c *Client) ListAssignments(ctx context.Context, deviceID string) ([]model.Assignment, error) {
	path := "/assignments"
	if deviceID != "" {
		path += "?deviceId=" + deviceID
	}
	var assignments []model.Assignment
	if err := c.do(ctx, http.MethodGet, path, nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CreateAssignment files a new assignment request.
func (c *Client) CreateAssignment(ctx context.Context, assignment model.Assignment) (*model.Assignment, error) {
	var created model.Assignment
	if err := c.do(ctx, http.MethodPost, "/assignments", assignment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAssignmentStatus moves an assignment through the approval workflow.
// The backend enforces legal transitions and quantity availability.
func (c *Client) UpdateAssignmentStatus(ctx context.Context, id, status string) (*model.Assignment, error) {
	var updated model.Assignment
	err := c.do(ctx, http.MethodPut, "/assignments/"+id+"/status",
		map[string]string{"status": status}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
