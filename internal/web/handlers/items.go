package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/web/middleware"
)

// ItemPage renders one item.
func (h *Handlers) ItemPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid item ID")
		h.redirect(w, r, "/")
		return
	}

	page, err := h.contentMgr.ItemPage(id, middleware.GetViewer(r.Context()))
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.render(w, r, "item.html", page)
}

// ItemNew renders the new-item form for a category.
func (h *Handlers) ItemNew(w http.ResponseWriter, r *http.Request) {
	categoryID, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}

	category, err := h.db.GetCategory(categoryID)
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.render(w, r, "item_form.html", map[string]any{
		"IsNew":      true,
		"CategoryID": category.ID,
		"Category":   category.Name,
	})
}

// ItemCreate handles creation of an item within a category.
func (h *Handlers) ItemCreate(w http.ResponseWriter, r *http.Request) {
	categoryID, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}
	viewer := middleware.GetViewer(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	if name == "" {
		h.render(w, r, "item_form.html", map[string]any{
			"IsNew":       true,
			"CategoryID":  categoryID,
			"Description": description,
			"Error":       "A name is required.",
		})
		return
	}

	item, err := h.db.CreateItem(name, description, categoryID, viewer.UserID)
	if errors.Is(err, database.ErrDuplicateName) {
		h.render(w, r, "item_form.html", map[string]any{
			"IsNew":       true,
			"CategoryID":  categoryID,
			"Name":        name,
			"Description": description,
			"Error":       "An item with that name already exists.",
		})
		return
	}
	if err != nil {
		h.htmlError(w, r, err, "/categories/"+strconv.FormatInt(categoryID, 10))
		return
	}

	h.flash(w, "Added new item '"+item.Name+"'.")
	h.redirect(w, r, "/items/"+strconv.FormatInt(item.ID, 10))
}

// ItemEdit renders the edit form for an item.
func (h *Handlers) ItemEdit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid item ID")
		h.redirect(w, r, "/")
		return
	}

	item, err := h.db.GetItem(id)
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	categories, err := h.db.ListCategories()
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.render(w, r, "item_form.html", map[string]any{
		"ID":          item.ID,
		"Name":        item.Name,
		"Description": item.Description,
		"CategoryID":  item.CategoryID,
		"Categories":  categories,
	})
}

// ItemUpdate handles editing an item, including moving it to another category.
func (h *Handlers) ItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid item ID")
		h.redirect(w, r, "/")
		return
	}
	viewer := middleware.GetViewer(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil || name == "" {
		h.render(w, r, "item_form.html", map[string]any{
			"ID":          id,
			"Name":        name,
			"Description": description,
			"Error":       "A name and a category are required.",
		})
		return
	}

	item, err := h.db.UpdateItem(id, name, description, categoryID, viewer.UserID)
	if errors.Is(err, database.ErrDuplicateName) {
		h.render(w, r, "item_form.html", map[string]any{
			"ID":          id,
			"Name":        name,
			"Description": description,
			"CategoryID":  categoryID,
			"Error":       "An item with that name already exists.",
		})
		return
	}
	if err != nil {
		h.htmlError(w, r, err, "/items/"+strconv.FormatInt(id, 10))
		return
	}

	h.flash(w, "Edited item '"+item.Name+"'.")
	h.redirect(w, r, "/items/"+strconv.FormatInt(item.ID, 10))
}

// ItemDelete removes an item.
func (h *Handlers) ItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid item ID")
		h.redirect(w, r, "/")
		return
	}
	viewer := middleware.GetViewer(r.Context())

	item, err := h.db.GetItem(id)
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	if err := h.db.DeleteItem(id, viewer.UserID); err != nil {
		h.htmlError(w, r, err, "/items/"+strconv.FormatInt(id, 10))
		return
	}

	h.flash(w, "Deleted item '"+item.Name+"'.")
	h.redirect(w, r, "/categories/"+strconv.FormatInt(item.CategoryID, 10))
}
