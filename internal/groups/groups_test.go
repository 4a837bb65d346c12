package groups

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zanvidmar/evidenca/internal/model"
	"github.com/zanvidmar/evidenca/internal/storage"
)

func TestCreateGeneratesIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	group, err := Create(ctx, s, model.DeviceGroup{Name: "Lab1", DeviceIDs: []string{"d1"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if group.ID == "" || !strings.HasPrefix(group.ID, "grp-") {
		t.Errorf("expected generated grp- id, got %q", group.ID)
	}
	if _, err := time.Parse(time.RFC3339, group.CreatedAt); err != nil {
		t.Errorf("expected valid RFC 3339 createdAt, got %q: %v", group.CreatedAt, err)
	}

	stored, _ := List(ctx, s)
	if len(stored) != 1 || stored[0].ID != group.ID {
		t.Errorf("expected stored group, got %+v", stored)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	if _, err := Create(ctx, s, model.DeviceGroup{Name: "Lab1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Create(ctx, s, model.DeviceGroup{Name: "Lab1"}); err == nil {
		t.Error("expected error for duplicate group name")
	}
	if _, err := Create(ctx, s, model.DeviceGroup{}); err == nil {
		t.Error("expected error for empty group name")
	}
}

func TestUpdateKeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	created, _ := Create(ctx, s, model.DeviceGroup{Name: "Lab1", CreatedBy: "u1"})

	err := Update(ctx, s, model.DeviceGroup{
		ID: created.ID, Name: "Lab2", Description: "renamed", DeviceIDs: []string{"d2"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := Get(ctx, s, created.ID)
	if got == nil {
		t.Fatal("group vanished after update")
	}
	if got.Name != "Lab2" || got.Description != "renamed" || len(got.DeviceIDs) != 1 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.CreatedAt != created.CreatedAt || got.CreatedBy != "u1" {
		t.Errorf("update altered immutable fields: %+v", got)
	}

	if err := Update(ctx, s, model.DeviceGroup{ID: "missing", Name: "x"}); err == nil {
		t.Error("expected error updating missing group")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	created, _ := Create(ctx, s, model.DeviceGroup{Name: "Lab1"})

	if err := Delete(ctx, s, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := Get(ctx, s, created.ID); got != nil {
		t.Error("group still present after delete")
	}
	if err := Delete(ctx, s, created.ID); err == nil {
		t.Error("expected error deleting missing group")
	}
}
