package content

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bookend/catalog/internal/database"
)

func newTestManager(t *testing.T) (*Manager, *database.DB, *database.User) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	user, err := db.FindOrCreateUser("content-test-user")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return NewManager(db), db, user
}

func TestMainPage(t *testing.T) {
	mgr, db, user := newTestManager(t)

	books, err := db.CreateCategory("Books", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	if _, err := db.CreateCategory("Albums", user.ID); err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	if _, err := db.CreateItem("Dune", "", books.ID, user.ID); err != nil {
		t.Fatalf("create item returned error: %v", err)
	}

	page, err := mgr.MainPage()
	if err != nil {
		t.Fatalf("MainPage returned error: %v", err)
	}
	if len(page.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(page.Categories))
	}
	if page.Categories[0].Name != "Albums" {
		t.Fatalf("expected categories ordered by name, got %q first", page.Categories[0].Name)
	}
	if len(page.Recent) != 1 {
		t.Fatalf("expected 1 recent item, got %d", len(page.Recent))
	}
	if page.Recent[0].CategoryName != "Books" {
		t.Fatalf("expected category name resolved on recent item, got %q", page.Recent[0].CategoryName)
	}
}

func TestCategoryPage_OwnershipHint(t *testing.T) {
	mgr, db, user := newTestManager(t)

	category, err := db.CreateCategory("Books", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}

	owner := &Viewer{UserID: user.ID, DisplayName: "Owner"}
	page, err := mgr.CategoryPage(category.ID, owner)
	if err != nil {
		t.Fatalf("CategoryPage returned error: %v", err)
	}
	if !page.CanModify {
		t.Fatal("expected owner to see modify controls")
	}

	page, err = mgr.CategoryPage(category.ID, nil)
	if err != nil {
		t.Fatalf("CategoryPage returned error: %v", err)
	}
	if page.CanModify {
		t.Fatal("expected anonymous viewer to see read-only page")
	}

	if _, err := mgr.CategoryPage(999, nil); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemPage_ResolvesCategory(t *testing.T) {
	mgr, db, user := newTestManager(t)

	category, err := db.CreateCategory("Books", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	item, err := db.CreateItem("Dune", "A desert planet.", category.ID, user.ID)
	if err != nil {
		t.Fatalf("create item returned error: %v", err)
	}

	page, err := mgr.ItemPage(item.ID, &Viewer{UserID: user.ID})
	if err != nil {
		t.Fatalf("ItemPage returned error: %v", err)
	}
	if page.Category.ID != category.ID {
		t.Fatalf("expected category resolved, got %d", page.Category.ID)
	}
	if !page.CanModify {
		t.Fatal("expected owner to see modify controls")
	}
}

func TestCatalogNestsItems(t *testing.T) {
	mgr, db, user := newTestManager(t)

	books, err := db.CreateCategory("Books", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	empty, err := db.CreateCategory("Empty", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	if _, err := db.CreateItem("Dune", "", books.ID, user.ID); err != nil {
		t.Fatalf("create item returned error: %v", err)
	}

	catalog, err := mgr.Catalog()
	if err != nil {
		t.Fatalf("Catalog returned error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(catalog))
	}
	if catalog[0].ID != books.ID || len(catalog[0].Items) != 1 {
		t.Fatalf("expected Books with 1 item first, got %+v", catalog[0])
	}
	if catalog[1].ID != empty.ID || len(catalog[1].Items) != 0 {
		t.Fatalf("expected Empty with no items second, got %+v", catalog[1])
	}
}

func TestRecentItems_ClampsCount(t *testing.T) {
	mgr, db, user := newTestManager(t)

	category, err := db.CreateCategory("Books", user.ID)
	if err != nil {
		t.Fatalf("create category returned error: %v", err)
	}
	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := db.CreateItem(name, "", category.ID, user.ID); err != nil {
			t.Fatalf("create item returned error: %v", err)
		}
	}

	// Zero falls back to the default, which covers all three items here
	items, err := mgr.RecentItems(0)
	if err != nil {
		t.Fatalf("RecentItems returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected all 3 items for default count, got %d", len(items))
	}

	items, err = mgr.RecentItems(2)
	if err != nil {
		t.Fatalf("RecentItems returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	// An absurd count is clamped rather than rejected
	if _, err := mgr.RecentItems(100000); err != nil {
		t.Fatalf("RecentItems returned error for large count: %v", err)
	}
}

func TestItemDetail_NotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	if _, err := mgr.ItemDetail(999); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
