package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zanvidmar/evidenca/internal/inventory"
	"github.com/zanvidmar/evidenca/internal/model"
)

// DefaultCategories is the category list used when the categories slot has
// never been written.
var DefaultCategories = []string{
	"Laptop", "Desktop", "Monitor", "Printer", "Scanner", "Projector",
	"Server", "Networking", "Tablet", "Phone", "Accessory", "Other",
}

func loadSlot(ctx context.Context, s Store, key string, target any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decoding slot %q: %w", key, err)
	}
	return true, nil
}

func saveSlot(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding slot %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// LoadDevices returns the cached device collection, or nil if never synced.
func LoadDevices(ctx context.Context, s Store) ([]model.Device, error) {
	var devices []model.Device
	if _, err := loadSlot(ctx, s, KeyDevices, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// SaveDevices replaces the cached device collection.
func SaveDevices(ctx context.Context, s Store, devices []model.Device) error {
	return saveSlot(ctx, s, KeyDevices, devices)
}

// LoadAssignments returns the cached assignment collection with legacy
// records normalized (missing quantity becomes 1).
func LoadAssignments(ctx context.Context, s Store) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if _, err := loadSlot(ctx, s, KeyAssignments, &assignments); err != nil {
		return nil, err
	}
	return inventory.NormalizeAssignments(assignments), nil
}

// SaveAssignments replaces the cached assignment collection.
func SaveAssignments(ctx context.Context, s Store, assignments []model.Assignment) error {
	return saveSlot(ctx, s, KeyAssignments, assignments)
}

// LoadCategories returns the category list, falling back to
// DefaultCategories when the slot is absent.
func LoadCategories(ctx context.Context, s Store) ([]string, error) {
	var categories []string
	ok, err := loadSlot(ctx, s, KeyCategories, &categories)
	if err != nil {
		return nil, err
	}
	if !ok {
		out := make([]string, len(DefaultCategories))
		copy(out, DefaultCategories)
		return out, nil
	}
	return categories, nil
}

// SaveCategories replaces the category list.
func SaveCategories(ctx context.Context, s Store, categories []string) error {
	return saveSlot(ctx, s, KeyCategories, categories)
}

// LoadGroups returns the device group collection.
func LoadGroups(ctx context.Context, s Store) ([]model.DeviceGroup, error) {
	var groups []model.DeviceGroup
	if _, err := loadSlot(ctx, s, KeyGroups, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SaveGroups replaces the device group collection.
func SaveGroups(ctx context.Context, s Store, groups []model.DeviceGroup) error {
	return saveSlot(ctx, s, KeyGroups, groups)
}

// AccessToken returns the persisted access token, if any.
func AccessToken(ctx context.Context, s Store) (string, bool, error) {
	raw, ok, err := s.Get(ctx, KeyAccessToken)
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), len(raw) > 0, nil
}

// SetAccessToken persists the access token.
func SetAccessToken(ctx context.Context, s Store, token string) error {
	return s.Set(ctx, KeyAccessToken, []byte(token))
}

// RefreshToken returns the persisted refresh token, if any.
func RefreshToken(ctx context.Context, s Store) (string, bool, error) {
	raw, ok, err := s.Get(ctx, KeyRefreshToken)
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), len(raw) > 0, nil
}

// SetRefreshToken persists the refresh token.
func SetRefreshToken(ctx context.Context, s Store, token string) error {
	return s.Set(ctx, KeyRefreshToken, []byte(token))
}

// ClearCredentials removes both tokens. The pair is always cleared
// together: a lone refresh token would resurrect a session the user ended,
// and a lone access token would fail its first refresh anyway.
func ClearCredentials(ctx context.Context, s Store) error {
	if err := s.Remove(ctx, KeyAccessToken); err != nil {
		return err
	}
	return s.Remove(ctx, KeyRefreshToken)
}
