// Package content shapes Access Layer records into what templates and JSON
// responses need. It performs no storage access of its own and enforces no
// invariant; its ownership hints are advisory UI state only, the database
// package stays authoritative.
package content

import (
	"time"

	"github.com/bookend/catalog/internal/database"
)

// RecentItemCount is how many latest items the main page shows.
const RecentItemCount = 10

// Viewer identifies the signed-in user looking at a page. A nil *Viewer is
// an anonymous visitor.
type Viewer struct {
	UserID      int64
	DisplayName string
}

// Manager shapes catalog content for presentation.
type Manager struct {
	db *database.DB
}

// NewManager creates a content manager on top of the access layer.
func NewManager(db *database.DB) *Manager {
	return &Manager{db: db}
}

// CanModify reports whether the viewer owns the record. Advisory only: it
// decides which edit/delete links a page offers, never whether a mutation
// is allowed.
func (m *Manager) CanModify(viewer *Viewer, ownerUserID int64) bool {
	return viewer != nil && viewer.UserID == ownerUserID
}

// RecentItem is a latest-items row with its category name resolved.
type RecentItem struct {
	ID           int64
	Name         string
	CategoryID   int64
	CategoryName string
}

// MainPage holds everything the landing page renders.
type MainPage struct {
	Categories []database.CategoryRow
	Recent     []RecentItem
}

// MainPage returns the ordered category list and the latest items.
func (m *Manager) MainPage() (*MainPage, error) {
	categories, err := m.db.ListCategories()
	if err != nil {
		return nil, err
	}

	items, err := m.db.ListRecentItems(RecentItemCount)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	recent := make([]RecentItem, 0, len(items))
	for _, item := range items {
		recent = append(recent, RecentItem{
			ID:           item.ID,
			Name:         item.Name,
			CategoryID:   item.CategoryID,
			CategoryName: names[item.CategoryID],
		})
	}

	return &MainPage{Categories: categories, Recent: recent}, nil
}

// CategoryPage holds a category with its alphabetical item listing.
type CategoryPage struct {
	Category  *database.Category
	Items     []database.ItemRow
	CanModify bool
}

// CategoryPage returns one category and its items.
func (m *Manager) CategoryPage(id int64, viewer *Viewer) (*CategoryPage, error) {
	category, err := m.db.GetCategory(id)
	if err != nil {
		return nil, err
	}

	items, err := m.db.ListCategoryItems(id)
	if err != nil {
		return nil, err
	}

	return &CategoryPage{
		Category:  category,
		Items:     items,
		CanModify: m.CanModify(viewer, category.UserID),
	}, nil
}

// ItemPage holds one item with its category resolved.
type ItemPage struct {
	Item      *database.Item
	Category  *database.Category
	CanModify bool
}

// ItemPage returns one item and the category it belongs to.
func (m *Manager) ItemPage(id int64, viewer *Viewer) (*ItemPage, error) {
	item, err := m.db.GetItem(id)
	if err != nil {
		return nil, err
	}

	category, err := m.db.GetCategory(item.CategoryID)
	if err != nil {
		return nil, err
	}

	return &ItemPage{
		Item:      item,
		Category:  category,
		CanModify: m.CanModify(viewer, item.UserID),
	}, nil
}

// CategoryJSON is the wire shape of a category, optionally with items.
type CategoryJSON struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Items []ItemSummaryJSON `json:"items,omitempty"`
}

// ItemSummaryJSON is the wire shape of an item inside a listing.
type ItemSummaryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemJSON is the wire shape of a full item record.
type ItemJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	CategoryID  int64     `json:"category_id"`
}

// Categories returns the bare category listing.
func (m *Manager) Categories() ([]CategoryJSON, error) {
	rows, err := m.db.ListCategories()
	if err != nil {
		return nil, err
	}

	out := make([]CategoryJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryJSON{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

// Catalog returns every category with its nested item listing.
func (m *Manager) Catalog() ([]CategoryJSON, error) {
	rows, err := m.db.ListCategories()
	if err != nil {
		return nil, err
	}

	out := make([]CategoryJSON, 0, len(rows))
	for _, row := range rows {
		items, err := m.db.ListCategoryItems(row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryJSON{ID: row.ID, Name: row.Name, Items: itemSummaries(items)})
	}
	return out, nil
}

// CategoryDetail returns one category with its nested item listing.
func (m *Manager) CategoryDetail(id int64) (*CategoryJSON, error) {
	category, err := m.db.GetCategory(id)
	if err != nil {
		return nil, err
	}

	items, err := m.db.ListCategoryItems(id)
	if err != nil {
		return nil, err
	}

	return &CategoryJSON{ID: category.ID, Name: category.Name, Items: itemSummaries(items)}, nil
}

// ItemDetail returns one full item record.
func (m *Manager) ItemDetail(id int64) (*ItemJSON, error) {
	item, err := m.db.GetItem(id)
	if err != nil {
		return nil, err
	}
	return itemJSON(item), nil
}

// RecentItems returns the count newest items. count is clamped to [1, 100];
// zero or negative falls back to the main-page default.
func (m *Manager) RecentItems(count int) ([]ItemJSON, error) {
	if count <= 0 {
		count = RecentItemCount
	}
	if count > 100 {
		count = 100
	}

	items, err := m.db.ListRecentItems(count)
	if err != nil {
		return nil, err
	}

	out := make([]ItemJSON, 0, len(items))
	for i := range items {
		out = append(out, *itemJSON(&items[i]))
	}
	return out, nil
}

func itemSummaries(rows []database.ItemRow) []ItemSummaryJSON {
	out := make([]ItemSummaryJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, ItemSummaryJSON{ID: row.ID, Name: row.Name})
	}
	return out
}

func itemJSON(item *database.Item) *ItemJSON {
	return &ItemJSON{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Created:     item.CreatedAt,
		CategoryID:  item.CategoryID,
	}
}
