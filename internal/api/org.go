package api

import (
	"context"
	"net/http"

	"github.com/zanvidmar/evidenca/internal/model"
)

// ListDepartments returns all departments.
func (c *Client) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	if err := c.do(ctx, http.MethodGet, "/departments", nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// CreateDepartment registers a new department.
func (c *Client) CreateDepartment(ctx context.Context, department model.Department) (*model.Department, error) {
	var created model.Department
	if err := c.do(ctx, http.MethodPost, "/departments", department, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/departments/"+id, nil, nil)
}

// ListLocations returns all locations.
func (c *Client) ListLocations(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// CreateLocation registers a new location.
func (c *Client) CreateLocation(ctx context.Context, location model.Location) (*model.Location, error) {
	var created model.Location
	if err := c.do(ctx, http.MethodPost, "/locations", location, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteLocation removes a location.
func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/locations/"+id, nil, nil)
}

// ListUsers returns all accounts (super admin only).
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUserRequest is the payload for registering a new account.
type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId,omitempty"`
}

// CreateUser registers a new account (super admin only).
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	var created model.User
	if err := c.do(ctx, http.MethodPost, "/users", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetUserActive enables or disables an account.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	return c.do(ctx, http.MethodPut, "/users/"+id+"/active",
		map[string]bool{"isActive": active}, nil)
}
