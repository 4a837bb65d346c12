// Package inventory reconciles device quantities against assignment records.
package inventory

import (
	"log/slog"

	"github.com/zanvidmar/evidenca/internal/model"
)

// committed reports whether an assignment in the given status reserves units.
func committed(status string) bool {
	return status == model.AssignmentStatusApproved || status == model.AssignmentStatusCompleted
}

// CommittedQuantity returns the number of units of the given device reserved
// by APPROVED or COMPLETED assignments. Assignments without a recorded
// quantity count as 1 (legacy default).
func CommittedQuantity(deviceID string, assignments []model.Assignment) int {
	total := 0
	for _, a := range assignments {
		if a.DeviceID != deviceID || !committed(a.Status) {
			continue
		}
		total += a.Units()
	}
	return total
}

// AvailableQuantity returns how many units of the device are not reserved by
// an active assignment, floored at zero. Committed exceeding the device's
// total is a data-integrity condition: the result is clamped and a warning
// is logged rather than returning an error.
func AvailableQuantity(device model.Device, assignments []model.Assignment) int {
	reserved := CommittedQuantity(device.ID, assignments)
	if reserved > device.Quantity {
		slog.Warn("device over-committed",
			"device", device.ID, "total", device.Quantity, "committed", reserved)
		return 0
	}
	return device.Quantity - reserved
}

// NormalizeAssignments substitutes the legacy default quantity of 1 for
// every record missing one. No other field is altered, and re-normalizing
// already-normalized records is a no-op. The input slice is not modified.
func NormalizeAssignments(raw []model.Assignment) []model.Assignment {
	if raw == nil {
		return nil
	}
	out := make([]model.Assignment, len(raw))
	for i, a := range raw {
		if a.Quantity == nil {
			one := 1
			a.Quantity = &one
		}
		out[i] = a
	}
	return out
}
