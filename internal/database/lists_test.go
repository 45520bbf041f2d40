// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/pantry/internal/models"
)

func createTestList(t *testing.T, db *DB, id string, members ...string) *models.List {
	t.Helper()
	list := &models.List{ID: id, Name: "Weekly " + id, Members: members, CreatedAt: base}
	if err := db.CreateList(context.Background(), list); err != nil {
		t.Fatalf("CreateList(%s) error = %v", id, err)
	}
	return list
}

func TestCreateAndGetList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestList(t, db, "list-1", "bob", "alice", "alice")

	got, err := db.GetList(ctx, "list-1")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if got.Name != "Weekly list-1" {
		t.Errorf("Name = %q, want Weekly list-1", got.Name)
	}
	if len(got.Members) != 2 || got.Members[0] != "alice" || got.Members[1] != "bob" {
		t.Errorf("Members = %v, want [alice bob]", got.Members)
	}
	if !got.IsMember("bob") || got.IsMember("carol") {
		t.Errorf("IsMember() mismatch for members %v", got.Members)
	}

	if _, err := db.GetList(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetList(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateList_GeneratesID(t *testing.T) {
	db := setupTestDB(t)

	list := &models.List{Name: "Party", Members: []string{"alice"}}
	if err := db.CreateList(context.Background(), list); err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if list.ID == "" || list.CreatedAt.IsZero() {
		t.Errorf("CreateList() did not fill ID/CreatedAt: %+v", list)
	}
}

func TestActiveListIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestList(t, db, "a-active", "alice")
	createTestList(t, db, "b-done", "alice")
	createTestList(t, db, "c-archived", "alice", "bob")
	createTestList(t, db, "d-bob", "bob")

	if err := db.SetListStatus(ctx, "b-done", true, false); err != nil {
		t.Fatalf("SetListStatus() error = %v", err)
	}
	if err := db.SetListStatus(ctx, "c-archived", false, true); err != nil {
		t.Fatalf("SetListStatus() error = %v", err)
	}

	ids, err := db.ActiveListIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveListIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "a-active" {
		t.Errorf("ActiveListIDs(alice) = %v, want [a-active]", ids)
	}

	ids, err = db.ActiveListIDs(ctx, "nobody")
	if err != nil {
		t.Fatalf("ActiveListIDs() error = %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("ActiveListIDs(nobody) = %v, want empty slice", ids)
	}

	if err := db.SetListStatus(ctx, "missing", true, true); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SetListStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestList(t, db, "list-1", "alice")

	milk := &models.ListItem{ListID: "list-1", Name: "Milk", Category: "Dairy", AddedBy: "alice", CreatedAt: base}
	eggs := &models.ListItem{ListID: "list-1", Name: "Eggs", Quantity: 12, AddedBy: "alice", CreatedAt: daysAfter(1)}
	for _, item := range []*models.ListItem{milk, eggs} {
		if err := db.AddListItem(ctx, item); err != nil {
			t.Fatalf("AddListItem(%s) error = %v", item.Name, err)
		}
	}

	if milk.ID == "" {
		t.Error("AddListItem() did not generate an ID")
	}
	if milk.Quantity != 1 {
		t.Errorf("Quantity = %v, want default 1", milk.Quantity)
	}

	items, err := db.ListItems(ctx, "list-1")
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 2 || items[0].Name != "Milk" || items[1].Name != "Eggs" {
		t.Errorf("ListItems() = %+v, want [Milk Eggs]", items)
	}

	got, err := db.GetListItem(ctx, "list-1", eggs.ID)
	if err != nil {
		t.Fatalf("GetListItem() error = %v", err)
	}
	if got.Quantity != 12 || got.Purchased {
		t.Errorf("GetListItem() = %+v, want quantity 12 unpurchased", got)
	}

	if _, err := db.GetListItem(ctx, "other-list", eggs.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetListItem(other list) error = %v, want ErrNotFound", err)
	}
}

func TestMarkPurchased(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestList(t, db, "list-1", "alice")
	item := &models.ListItem{ListID: "list-1", Name: "Milk", AddedBy: "alice"}
	if err := db.AddListItem(ctx, item); err != nil {
		t.Fatalf("AddListItem() error = %v", err)
	}

	got, err := db.MarkPurchased(ctx, "list-1", item.ID, "alice", daysAfter(2))
	if err != nil {
		t.Fatalf("MarkPurchased() error = %v", err)
	}
	if !got.Purchased {
		t.Error("MarkPurchased() returned an unpurchased item")
	}

	again, err := db.MarkPurchased(ctx, "list-1", item.ID, "alice", daysAfter(3))
	if !errors.Is(err, models.ErrAlreadyPurchased) {
		t.Fatalf("second MarkPurchased() error = %v, want ErrAlreadyPurchased", err)
	}
	if again == nil || again.ID != item.ID {
		t.Errorf("second MarkPurchased() item = %+v, want stored item", again)
	}

	if _, err := db.MarkPurchased(ctx, "list-1", "missing", "alice", daysAfter(3)); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("MarkPurchased(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUnpurchasedItemNames(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestList(t, db, "list-1", "alice")
	createTestList(t, db, "list-2", "alice")

	add := func(listID, name string) *models.ListItem {
		item := &models.ListItem{ListID: listID, Name: name, AddedBy: "alice"}
		if err := db.AddListItem(ctx, item); err != nil {
			t.Fatalf("AddListItem() error = %v", err)
		}
		return item
	}
	add("list-1", "Milk")
	bread := add("list-1", "Bread")
	add("list-2", "Milk")
	add("list-2", "Apples")

	if _, err := db.MarkPurchased(ctx, "list-1", bread.ID, "alice", base); err != nil {
		t.Fatalf("MarkPurchased() error = %v", err)
	}

	names, err := db.UnpurchasedItemNames(ctx, []string{"list-1", "list-2"})
	if err != nil {
		t.Fatalf("UnpurchasedItemNames() error = %v", err)
	}
	want := []string{"Apples", "Milk"}
	if len(names) != len(want) {
		t.Fatalf("UnpurchasedItemNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	empty, err := db.UnpurchasedItemNames(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("UnpurchasedItemNames(nil) = %v, %v, want empty", empty, err)
	}
}
