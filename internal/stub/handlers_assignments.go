package stub

import (
	"database/sql"
	"net/http"

	"github.com/zanvidmar/evidenca/internal/inventory"
	"github.com/zanvidmar/evidenca/internal/model"
)

// AssignmentsHandler handles the assignment approval workflow.
type AssignmentsHandler struct {
	DB *sql.DB
}

// legalTransitions maps a status to the statuses it may move to.
var legalTransitions = map[string][]string{
	model.AssignmentStatusRequested: {model.AssignmentStatusPending, model.AssignmentStatusApproved, model.AssignmentStatusRejected},
	model.AssignmentStatusPending:   {model.AssignmentStatusApproved, model.AssignmentStatusRejected},
	model.AssignmentStatusApproved:  {model.AssignmentStatusCompleted},
	model.AssignmentStatusCompleted: {model.AssignmentStatusReturned},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// List handles GET /assignments.
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := listAssignments(r.Context(), h.DB, r.URL.Query().Get("deviceId"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, assignments)
}

// Create handles POST /assignments. New assignments always start in
// REQUESTED status regardless of what the caller sends.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var assignment model.Assignment
	if err := decodeJSON(r, &assignment); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if assignment.DeviceID == "" || assignment.DepartmentID == "" {
		respondError(w, http.StatusBadRequest, "device and department required")
		return
	}
	if assignment.Quantity != nil && *assignment.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	device, err := getDevice(r.Context(), h.DB, assignment.DeviceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if device == nil {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}

	created, err := createAssignment(r.Context(), h.DB, assignment)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusCreated, created)
}

// SetStatus handles PUT /assignments/{id}/status. Approval checks that the
// device still has enough uncommitted units for the requested quantity.
func (h *AssignmentsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		respondError(w, http.StatusBadRequest, "status required")
		return
	}

	assignment, err := getAssignment(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if assignment == nil {
		respondError(w, http.StatusNotFound, "assignment not found")
		return
	}

	if !transitionAllowed(assignment.Status, req.Status) {
		respondError(w, http.StatusConflict,
			"cannot move assignment from "+assignment.Status+" to "+req.Status)
		return
	}

	if req.Status == model.AssignmentStatusApproved {
		device, err := getDevice(r.Context(), h.DB, assignment.DeviceID)
		if err != nil || device == nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		others, err := listAssignments(r.Context(), h.DB, assignment.DeviceID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		committed := inventory.CommittedQuantity(device.ID, others)
		if committed+assignment.Units() > device.Quantity {
			respondError(w, http.StatusConflict, "insufficient available quantity")
			return
		}
	}

	if err := setAssignmentStatus(r.Context(), h.DB, assignment.ID, req.Status); err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := getAssignment(r.Context(), h.DB, assignment.ID)
	if err != nil || updated == nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, updated)
}
