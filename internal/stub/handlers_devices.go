package stub

import (
	"bytes"
	"database/sql"
	"net/http"
	"strings"

	"github.com/zanvidmar/evidenca/internal/imaging"
	"github.com/zanvidmar/evidenca/internal/model"
)

// DevicesHandler handles device endpoints.
type DevicesHandler struct {
	DB *sql.DB
}

// List handles GET /devices.
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := listDevices(r.Context(), h.DB, r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, devices)
}

// Get handles GET /devices/{id}.
func (h *DevicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, err := getDevice(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if device == nil {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}
	respond(w, http.StatusOK, device)
}

// Create handles POST /devices.
func (h *DevicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var device model.Device
	if err := decodeJSON(r, &device); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if device.AssetTag == "" || device.Name == "" || device.Category == "" {
		respondError(w, http.StatusBadRequest, "asset tag, name and category required")
		return
	}
	if device.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	created, err := createDevice(r.Context(), h.DB, device)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			respondError(w, http.StatusConflict, "asset tag already in use")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusCreated, created)
}

// Update handles PUT /devices/{id}.
func (h *DevicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var device model.Device
	if err := decodeJSON(r, &device); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	device.ID = r.PathValue("id")
	if device.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	updated, err := updateDevice(r.Context(), h.DB, device)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}
	respond(w, http.StatusOK, updated)
}

// Delete handles DELETE /devices/{id}.
func (h *DevicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := deleteDevice(r.Context(), h.DB, r.PathValue("id"))
	if err == sql.ErrNoRows {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil)
}

// UploadPhoto handles PUT /devices/{id}/photo.
func (h *DevicesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := imaging.PreparePhoto(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = setDevicePhoto(r.Context(), h.DB, r.PathValue("id"), photo.Data, photo.MIME)
	if err == sql.ErrNoRows {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, nil)
}

// GetPhoto handles GET /devices/{id}/photo, serving raw image bytes.
func (h *DevicesHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, mime, err := getDevicePhoto(r.Context(), h.DB, r.PathValue("id"))
	if err == sql.ErrNoRows || len(photo) == 0 {
		respondError(w, http.StatusNotFound, "no photo for device")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	bytes.NewReader(photo).WriteTo(w)
}
