package database

import (
	"errors"
	"testing"
	"time"
)

func TestCreateItem_SetsOwnerAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	before := time.Now().UTC().Add(-time.Second)
	item, err := db.CreateItem("Dune", "Desert planet.", category.ID, owner.ID)
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	after := time.Now().UTC().Add(time.Second)

	got, err := db.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem returned error: %v", err)
	}
	if got.UserID != owner.ID {
		t.Fatalf("expected owner %d, got %d", owner.ID, got.UserID)
	}
	if got.CategoryID != category.ID {
		t.Fatalf("expected category %d, got %d", category.ID, got.CategoryID)
	}
	if got.CreatedAt.Before(before) || got.CreatedAt.After(after) {
		t.Fatalf("creation timestamp %v outside expected window", got.CreatedAt)
	}
	if got.Description != "Desert planet." {
		t.Fatalf("expected description to round-trip, got %q", got.Description)
	}
}

func TestCreateItem_MissingCategory(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	_, err := db.CreateItem("Dune", "", 999, owner.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateItem_OnlyCategoryOwnerMayAdd(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")
	other := newTestUser(t, db, "other")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	_, err = db.CreateItem("Dune", "", category.ID, other.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateItem_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	if _, err := db.CreateItem("Dune", "", category.ID, owner.ID); err != nil {
		t.Fatalf("first create returned error: %v", err)
	}
	if _, err := db.CreateItem("Dune", "", category.ID, owner.ID); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestListCategoryItems_OrderedByName(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	for _, name := range []string{"Zebra", "Aardvark", "Mongoose"} {
		if _, err := db.CreateItem(name, "", category.ID, owner.ID); err != nil {
			t.Fatalf("create %q returned error: %v", name, err)
		}
	}

	items, err := db.ListCategoryItems(category.ID)
	if err != nil {
		t.Fatalf("ListCategoryItems returned error: %v", err)
	}
	want := []string{"Aardvark", "Mongoose", "Zebra"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, items[i].Name)
		}
	}
}

func TestListRecentItems_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	// Insert directly with controlled timestamps: two older items sharing a
	// timestamp (exercising the id tie-break) and one newer item.
	older := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, row := range []struct {
		name    string
		created time.Time
	}{
		{"First", older},
		{"Second", older},
		{"Third", newer},
	} {
		if _, err := db.exec(`
			INSERT INTO items (name, description, created_at, category_id, user_id)
			VALUES (?, '', ?, ?, ?)
		`, row.name, row.created, category.ID, owner.ID); err != nil {
			t.Fatalf("failed to seed item %q: %v", row.name, err)
		}
	}

	items, err := db.ListRecentItems(10)
	if err != nil {
		t.Fatalf("ListRecentItems returned error: %v", err)
	}
	want := []string{"Third", "Second", "First"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, items[i].Name)
		}
	}

	limited, err := db.ListRecentItems(1)
	if err != nil {
		t.Fatalf("ListRecentItems returned error: %v", err)
	}
	if len(limited) != 1 || limited[0].Name != "Third" {
		t.Fatalf("expected only the newest item, got %v", limited)
	}

	// A brand new item always lists first with n=1
	created, err := db.CreateItem("Fourth", "", category.ID, owner.ID)
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	latest, err := db.ListRecentItems(1)
	if err != nil {
		t.Fatalf("ListRecentItems returned error: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != created.ID {
		t.Fatalf("expected the new item first, got %v", latest)
	}
}

func TestListRecentItems_NonPositiveLimit(t *testing.T) {
	db := newTestDB(t)

	items, err := db.ListRecentItems(0)
	if err != nil {
		t.Fatalf("ListRecentItems returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items for limit 0, got %d", len(items))
	}
}

func TestUpdateItem_MoveKeepsOwnerAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")

	books, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	films, err := db.CreateCategory("Films", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	item, err := db.CreateItem("Dune", "Desert planet.", books.ID, owner.ID)
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}

	updated, err := db.UpdateItem(item.ID, "Dune (1984)", "The film.", films.ID, owner.ID)
	if err != nil {
		t.Fatalf("UpdateItem returned error: %v", err)
	}
	if updated.CategoryID != films.ID {
		t.Fatalf("expected item moved to %d, got %d", films.ID, updated.CategoryID)
	}
	if updated.UserID != item.UserID {
		t.Fatalf("owner must not change on update, got %d", updated.UserID)
	}
	if !updated.CreatedAt.Equal(item.CreatedAt) {
		t.Fatalf("creation timestamp must not change on update, got %v", updated.CreatedAt)
	}
}

func TestUpdateItem_Errors(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")
	other := newTestUser(t, db, "other")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	item, err := db.CreateItem("Dune", "", category.ID, owner.ID)
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	if _, err := db.CreateItem("Hyperion", "", category.ID, owner.ID); err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}

	if _, err := db.UpdateItem(item.ID, "Dune", "", category.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := db.UpdateItem(item.ID, "Hyperion", "", category.ID, owner.ID); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := db.UpdateItem(item.ID, "Dune", "", 999, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target category, got %v", err)
	}
	if _, err := db.UpdateItem(999, "Anything", "", category.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestDeleteItem_ChecksOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "owner")
	other := newTestUser(t, db, "other")

	category, err := db.CreateCategory("Books", owner.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	item, err := db.CreateItem("Dune", "", category.ID, owner.ID)
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}

	if err := db.DeleteItem(item.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := db.GetItem(item.ID); err != nil {
		t.Fatalf("item should survive failed delete, got %v", err)
	}

	if err := db.DeleteItem(item.ID, owner.ID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if _, err := db.GetItem(item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// TestOwnershipScenario walks the end-to-end ownership story: two users, a
// shared namespace, and a cascade delete.
func TestOwnershipScenario(t *testing.T) {
	db := newTestDB(t)
	u1 := newTestUser(t, db, "user-one")
	u2 := newTestUser(t, db, "user-two")

	books, err := db.CreateCategory("Books", u1.ID)
	if err != nil {
		t.Fatalf("u1 create category returned error: %v", err)
	}

	if _, err := db.CreateCategory("Books", u2.ID); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for u2, got %v", err)
	}

	if _, err := db.UpdateCategory(books.ID, "Paperbacks", u2.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for u2 rename, got %v", err)
	}

	dune, err := db.CreateItem("Dune", "A desert planet.", books.ID, u1.ID)
	if err != nil {
		t.Fatalf("u1 create item returned error: %v", err)
	}
	if dune.UserID != u1.ID {
		t.Fatalf("expected item owned by u1, got %d", dune.UserID)
	}
	if dune.CreatedAt.IsZero() {
		t.Fatal("expected creation timestamp to be set")
	}

	if err := db.DeleteItem(dune.ID, u2.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for u2 delete, got %v", err)
	}

	if err := db.DeleteCategory(books.ID, u1.ID); err != nil {
		t.Fatalf("u1 delete category returned error: %v", err)
	}
	if _, err := db.GetItem(dune.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected item gone with its category, got %v", err)
	}
}
