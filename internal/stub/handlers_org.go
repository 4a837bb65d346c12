package stub

import (
	"database/sql"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/zanvidmar/evidenca/internal/model"
)

// OrgHandler handles department, location and user account endpoints.
type OrgHandler struct {
	DB *sql.DB
}

// ListDepartments handles GET /departments.
func (h *OrgHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := listDepartments(r.Context(), h.DB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, departments)
}

// CreateDepartment handles POST /departments.
func (h *OrgHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var department model.Department
	if err := decodeJSON(r, &department); err != nil || department.Name == "" {
		respondError(w, http.StatusBadRequest, "department name required")
		return
	}

	created, err := createDepartment(r.Context(), h.DB, department)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			respondError(w, http.StatusConflict, "department already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusCreated, created)
}

// DeleteDepartment handles DELETE /departments/{id}.
func (h *OrgHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	err := deleteDepartment(r.Context(), h.DB, r.PathValue("id"))
	if err == sql.ErrNoRows {
		respondError(w, http.StatusNotFound, "department not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil)
}

// ListLocations handles GET /locations.
func (h *OrgHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := listLocations(r.Context(), h.DB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, locations)
}

// CreateLocation handles POST /locations.
func (h *OrgHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var location model.Location
	if err := decodeJSON(r, &location); err != nil || location.Name == "" {
		respondError(w, http.StatusBadRequest, "location name required")
		return
	}

	created, err := createLocation(r.Context(), h.DB, location)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusCreated, created)
}

// DeleteLocation handles DELETE /locations/{id}.
func (h *OrgHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	err := deleteLocation(r.Context(), h.DB, r.PathValue("id"))
	if err == sql.ErrNoRows {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil)
}

type createUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId"`
}

// ListUsers handles GET /users.
func (h *OrgHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := listUsers(r.Context(), h.DB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, users)
}

// CreateUser handles POST /users.
func (h *OrgHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password required")
		return
	}
	switch req.Role {
	case model.RoleSuperAdmin, model.RoleITStaff, model.RoleDepartmentInCharge:
	default:
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	created, err := createUser(r.Context(), h.DB, req.Name, req.Email, string(hash), req.Role, req.DepartmentID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			respondError(w, http.StatusConflict, "email already in use")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusCreated, created)
}

// SetUserActive handles PUT /users/{id}/active.
func (h *OrgHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := setUserActive(r.Context(), h.DB, r.PathValue("id"), req.IsActive)
	if err == sql.ErrNoRows {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil)
}
