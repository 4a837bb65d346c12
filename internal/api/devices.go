package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/zanvidmar/evidenca/internal/model"
)

// ListDevices returns all devices, optionally filtered by status.
func (c *Client) ListDevices(ctx context.Context, status string) ([]model.Device, error) {
	path := "/devices"
	if status != "" {
		path += "?status=" + status
	}
	var devices []model.Device
	if err := c.do(ctx, http.MethodGet, path, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice returns a device by ID.
func (c *Client) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	if err := c.do(ctx, http.MethodGet, "/devices/"+id, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// CreateDevice registers a new device.
func (c *Client) CreateDevice(ctx context.Context, device model.Device) (*model.Device, error) {
	var created model.Device
	if err := c.do(ctx, http.MethodPost, "/devices", device, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDevice replaces a device's mutable fields.
func (c *Client) UpdateDevice(ctx context.Context, device model.Device) (*model.Device, error) {
	var updated model.Device
	if err := c.do(ctx, http.MethodPut, "/devices/"+device.ID, device, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+id, nil, nil)
}

// UploadDevicePhoto sends a device photo. The backend downscales and
// re-encodes it.
func (c *Client) UploadDevicePhoto(ctx context.Context, id, mime string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/devices/"+id+"/photo", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building photo request: %w", err)
	}
	req.Header.Set("Content-Type", mime)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploading photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: "photo upload failed"}
	}
	return nil
}

// DevicePhoto fetches a device photo, returning the bytes and MIME type.
func (c *Client) DevicePhoto(ctx context.Context, id string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/devices/"+id+"/photo", nil)
	if err != nil {
		return nil, "", fmt.Errorf("building photo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", &APIError{Status: resp.StatusCode, Message: "photo fetch failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading photo: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
