package model

// DeviceGroup is a client-local named collection of devices. Groups never
// leave the local store; the backend does not know about them.
type DeviceGroup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DeviceIDs   []string `json:"deviceIds"`
	CreatedAt   string   `json:"createdAt"`
	CreatedBy   string   `json:"createdBy,omitempty"`
}
