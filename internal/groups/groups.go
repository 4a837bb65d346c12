// Package groups manages client-local device groups on top of the storage
// port.
package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/zanvidmar/evidenca/internal/model"
	"github.com/zanvidmar/evidenca/internal/storage"
)

// idPrefix is the fixed prefix for generated group identifiers.
const idPrefix = "grp-"

// newID generates a group identifier from the current timestamp.
func newID() string {
	return fmt.Sprintf("%s%d", idPrefix, time.Now().UnixMilli())
}

// Create stores a new group. A missing ID is generated and a missing
// CreatedAt is stamped. Group names must be unique.
func Create(ctx context.Context, s storage.Store, group model.DeviceGroup) (*model.DeviceGroup, error) {
	if group.Name == "" {
		return nil, fmt.Errorf("group name required")
	}

	existing, err := storage.LoadGroups(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	for _, g := range existing {
		if g.Name == group.Name {
			return nil, fmt.Errorf("group %q already exists", group.Name)
		}
	}

	if group.ID == "" {
		group.ID = newID()
	}
	if group.CreatedAt == "" {
		group.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if group.DeviceIDs == nil {
		group.DeviceIDs = []string{}
	}

	if err := storage.SaveGroups(ctx, s, append(existing, group)); err != nil {
		return nil, fmt.Errorf("saving groups: %w", err)
	}
	return &group, nil
}

// List returns all stored groups.
func List(ctx context.Context, s storage.Store) ([]model.DeviceGroup, error) {
	groups, err := storage.LoadGroups(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	return groups, nil
}

// Get returns a group by ID, or nil if absent.
func Get(ctx context.Context, s storage.Store, id string) (*model.DeviceGroup, error) {
	groups, err := storage.LoadGroups(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	for _, g := range groups {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, nil
}

// Update replaces a stored group's name, description and device list. The
// ID, CreatedAt and CreatedBy fields are immutable.
func Update(ctx context.Context, s storage.Store, group model.DeviceGroup) error {
	groups, err := storage.LoadGroups(ctx, s)
	if err != nil {
		return fmt.Errorf("loading groups: %w", err)
	}

	for i, g := range groups {
		if g.ID != group.ID {
			continue
		}
		g.Name = group.Name
		g.Description = group.Description
		if group.DeviceIDs != nil {
			g.DeviceIDs = group.DeviceIDs
		}
		groups[i] = g
		return storage.SaveGroups(ctx, s, groups)
	}
	return fmt.Errorf("group %q not found", group.ID)
}

// Delete removes a group by ID.
func Delete(ctx context.Context, s storage.Store, id string) error {
	groups, err := storage.LoadGroups(ctx, s)
	if err != nil {
		return fmt.Errorf("loading groups: %w", err)
	}

	kept := groups[:0]
	for _, g := range groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(groups) {
		return fmt.Errorf("group %q not found", id)
	}
	return storage.SaveGroups(ctx, s, kept)
}
