package database

import (
	"database/sql"
	"time"
)

// Category represents a catalog category. UserID is the owning user and is
// immutable after creation.
type Category struct {
	ID        int64
	Name      string
	UserID    int64
	CreatedAt time.Time
}

// CategoryRow is the (id, name) projection used for listings.
type CategoryRow struct {
	ID   int64
	Name string
}

// ListCategories returns all categories ordered by name.
func (db *DB) ListCategories() ([]CategoryRow, error) {
	rows, err := db.query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var categories []CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, storageErr("list categories", err)
		}
		categories = append(categories, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by id.
func (db *DB) GetCategory(id int64) (*Category, error) {
	category := &Category{}
	err := db.queryRow(`
		SELECT id, name, user_id, created_at FROM categories WHERE id = ?
	`, id).Scan(&category.ID, &category.Name, &category.UserID, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get category", err)
	}
	return category, nil
}

// CreateCategory inserts a new category owned by ownerUserID. Names are
// unique across all categories (case-sensitive).
func (db *DB) CreateCategory(name string, ownerUserID int64) (*Category, error) {
	if ownerUserID <= 0 {
		return nil, ErrUnauthenticated
	}

	var category *Category
	err := db.Transaction(func(tx *sql.Tx) error {
		if err := checkCategoryNameFree(tx, name, 0); err != nil {
			return err
		}

		now := time.Now().UTC()
		result, err := tx.Exec(`
			INSERT INTO categories (name, user_id, created_at) VALUES (?, ?, ?)
		`, name, ownerUserID, now)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateName
			}
			return storageErr("create category", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return storageErr("create category", err)
		}

		category = &Category{ID: id, Name: name, UserID: ownerUserID, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category. Only the owning user may do so, and the
// new name must not collide with a different category.
func (db *DB) UpdateCategory(id int64, newName string, requestingUserID int64) (*Category, error) {
	if requestingUserID <= 0 {
		return nil, ErrUnauthenticated
	}

	var category *Category
	err := db.Transaction(func(tx *sql.Tx) error {
		existing, err := getCategoryTx(tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != requestingUserID {
			return ErrForbidden
		}
		if err := checkCategoryNameFree(tx, newName, id); err != nil {
			return err
		}

		if _, err := tx.Exec("UPDATE categories SET name = ? WHERE id = ?", newName, id); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateName
			}
			return storageErr("update category", err)
		}

		existing.Name = newName
		category = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category and all items it contains as one atomic
// unit. Only the owning user may delete it.
func (db *DB) DeleteCategory(id int64, requestingUserID int64) error {
	if requestingUserID <= 0 {
		return ErrUnauthenticated
	}

	return db.Transaction(func(tx *sql.Tx) error {
		existing, err := getCategoryTx(tx, id)
		if err != nil {
			return err
		}
		if existing.UserID != requestingUserID {
			return ErrForbidden
		}

		// The ON DELETE CASCADE on items.category_id removes contained items
		// within the same transaction.
		if _, err := tx.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
			return storageErr("delete category", err)
		}
		return nil
	})
}

func getCategoryTx(tx *sql.Tx, id int64) (*Category, error) {
	category := &Category{}
	err := tx.QueryRow(`
		SELECT id, name, user_id, created_at FROM categories WHERE id = ?
	`, id).Scan(&category.ID, &category.Name, &category.UserID, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get category", err)
	}
	return category, nil
}

// checkCategoryNameFree fails with ErrDuplicateName when name belongs to a
// category other than excludeID. Runs inside the caller's transaction so the
// check and the write it guards are atomic.
func checkCategoryNameFree(tx *sql.Tx, name string, excludeID int64) error {
	var otherID int64
	err := tx.QueryRow(`
		SELECT id FROM categories WHERE name = ? AND id != ?
	`, name, excludeID).Scan(&otherID)
	if err == nil {
		return ErrDuplicateName
	}
	if err != sql.ErrNoRows {
		return storageErr("check category name", err)
	}
	return nil
}
