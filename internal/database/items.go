package database

import (
	"database/sql"
	"time"
)

// Item represents a catalog item. UserID is the owning user and CreatedAt
// the creation timestamp; neither changes after insertion.
type Item struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	CategoryID  int64
	UserID      int64
}

// ItemRow is the (id, name) projection used for listings.
type ItemRow struct {
	ID   int64
	Name string
}

// ListCategoryItems returns the items of one category ordered by name.
func (db *DB) ListCategoryItems(categoryID int64) ([]ItemRow, error) {
	rows, err := db.query(`
		SELECT id, name FROM items WHERE category_id = ? ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, storageErr("list category items", err)
	}
	defer rows.Close()

	return collectItemRows(rows)
}

// ListRecentItems returns at most limit items, newest first. Ties on the
// creation timestamp break by id descending so the order is deterministic.
func (db *DB) ListRecentItems(limit int) ([]Item, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := db.query(`
		SELECT id, name, description, created_at, category_id, user_id
		FROM items ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, storageErr("list recent items", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.CategoryID, &item.UserID); err != nil {
			return nil, storageErr("list recent items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list recent items", err)
	}
	return items, nil
}

// GetItem retrieves an item by id.
func (db *DB) GetItem(id int64) (*Item, error) {
	item := &Item{}
	err := db.queryRow(`
		SELECT id, name, description, created_at, category_id, user_id
		FROM items WHERE id = ?
	`, id).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.CategoryID, &item.UserID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get item", err)
	}
	return item, nil
}

// CreateItem inserts a new item into an existing category. The owner and the
// creation timestamp are set atomically with the insert. Only the category's
// owner may add items to it.
func (db *DB) CreateItem(name, description string, categoryID, ownerUserID int64) (*Item, error) {
	if ownerUserID <= 0 {
		return nil, ErrUnauthenticated
	}

	var item *Item
	err := db.Transaction(func(tx *sql.Tx) error {
		category, err := getCategoryTx(tx, categoryID)
		if err != nil {
			return err
		}
		if category.UserID != ownerUserID {
			return ErrForbidden
		}
		if err := checkItemNameFree(tx, name, 0); err != nil {
			return err
		}

		now := time.Now().UTC()
		result, err := tx.Exec(`
			INSERT INTO items (name, description, created_at, category_id, user_id)
			VALUES (?, ?, ?, ?, ?)
		`, name, description, now, categoryID, ownerUserID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateName
			}
			return storageErr("create item", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return storageErr("create item", err)
		}

		item = &Item{
			ID:          id,
			Name:        name,
			Description: description,
			CreatedAt:   now,
			CategoryID:  categoryID,
			UserID:      ownerUserID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem changes an item's name, description, and category. Only the
// owning user may do so. Moving the item to another existing category is
// allowed and changes neither the owner nor the creation timestamp.
func (db *DB) UpdateItem(id int64, name, description string, categoryID, requestingUserID int64) (*Item, error) {
	if requestingUserID <= 0 {
		return nil, ErrUnauthenticated
	}

	var item *Item
	err := db.Transaction(func(tx *sql.Tx) error {
		existing, err := getItemTx(tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != requestingUserID {
			return ErrForbidden
		}
		if categoryID != existing.CategoryID {
			if _, err := getCategoryTx(tx, categoryID); err != nil {
				return err
			}
		}
		if err := checkItemNameFree(tx, name, id); err != nil {
			return err
		}

		if _, err := tx.Exec(`
			UPDATE items SET name = ?, description = ?, category_id = ? WHERE id = ?
		`, name, description, categoryID, id); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateName
			}
			return storageErr("update item", err)
		}

		existing.Name = name
		existing.Description = description
		existing.CategoryID = categoryID
		item = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item. Only the owning user may delete it.
func (db *DB) DeleteItem(id int64, requestingUserID int64) error {
	if requestingUserID <= 0 {
		return ErrUnauthenticated
	}

	return db.Transaction(func(tx *sql.Tx) error {
		existing, err := getItemTx(tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != requestingUserID {
			return ErrForbidden
		}

		if _, err := tx.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
			return storageErr("delete item", err)
		}
		return nil
	})
}

func getItemTx(tx *sql.Tx, id int64) (*Item, error) {
	item := &Item{}
	err := tx.QueryRow(`
		SELECT id, name, description, created_at, category_id, user_id
		FROM items WHERE id = ?
	`, id).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.CategoryID, &item.UserID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get item", err)
	}
	return item, nil
}

func checkItemNameFree(tx *sql.Tx, name string, excludeID int64) error {
	var otherID int64
	err := tx.QueryRow(`
		SELECT id FROM items WHERE name = ? AND id != ?
	`, name, excludeID).Scan(&otherID)
	if err == nil {
		return ErrDuplicateName
	}
	if err != sql.ErrNoRows {
		return storageErr("check item name", err)
	}
	return nil
}

func collectItemRows(rows *sql.Rows) ([]ItemRow, error) {
	var items []ItemRow
	for rows.Next() {
		var row ItemRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, storageErr("scan item row", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan item rows", err)
	}
	return items, nil
}
