package model

import "time"

// Device represents a tracked asset type. Quantity is the total number of
// owned units, not the number currently available.
type Device struct {
	ID           string    `json:"id"`
	AssetTag     string    `json:"assetTag"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     int       `json:"quantity"`
	Status       string    `json:"status"`
	DepartmentID string    `json:"departmentId,omitempty"`
	LocationID   string    `json:"locationId,omitempty"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	PhotoMime    string    `json:"photoMime,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Device statuses.
const (
	DeviceStatusInStock     = "IN_STOCK"
	DeviceStatusIssued      = "ISSUED"
	DeviceStatusAssigned    = "ASSIGNED"
	DeviceStatusMaintenance = "MAINTENANCE"
	DeviceStatusScrapped    = "SCRAPPED"
)

// Department groups devices and users under a department in-charge.
type Department struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InChargeID string    `json:"inChargeId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Location is a physical place a device can be installed at.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Building  string    `json:"building,omitempty"`
	Floor     string    `json:"floor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
