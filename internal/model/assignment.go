package model

import "time"

// Assignment represents a request to assign units of a device to a
// department. Quantity is a pointer so that legacy records written before
// quantity tracking existed (no quantity field) stay distinguishable from
// an explicit value until normalization substitutes the default of 1.
type Assignment struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"deviceId"`
	DepartmentID string    `json:"departmentId"`
	LocationID   string    `json:"locationId,omitempty"`
	Status       string    `json:"status"`
	Quantity     *int      `json:"quantity,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Assignment statuses.
const (
	AssignmentStatusRequested = "REQUESTED"
	AssignmentStatusPending   = "PENDING"
	AssignmentStatusApproved  = "APPROVED"
	AssignmentStatusRejected  = "REJECTED"
	AssignmentStatusCompleted = "COMPLETED"
	AssignmentStatusReturned  = "RETURNED"
)

// Units returns the number of units the assignment reserves, applying the
// legacy default of 1 when no quantity was recorded.
func (a Assignment) Units() int {
	if a.Quantity == nil {
		return 1
	}
	return *a.Quantity
}
