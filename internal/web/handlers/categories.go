package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/web/middleware"
)

// MainPage renders the landing page: categories plus the latest items.
func (h *Handlers) MainPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.contentMgr.MainPage()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load main page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "main.html", page)
}

// CategoryPage renders one category with its items.
func (h *Handlers) CategoryPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}

	page, err := h.contentMgr.CategoryPage(id, middleware.GetViewer(r.Context()))
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.render(w, r, "category.html", page)
}

// CategoryNew renders the new-category form.
func (h *Handlers) CategoryNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "category_form.html", map[string]any{
		"IsNew": true,
	})
}

// CategoryCreate handles creation of a category.
func (h *Handlers) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.render(w, r, "category_form.html", map[string]any{
			"IsNew": true,
			"Error": "A name is required.",
		})
		return
	}

	category, err := h.db.CreateCategory(name, viewer.UserID)
	if errors.Is(err, database.ErrDuplicateName) {
		h.render(w, r, "category_form.html", map[string]any{
			"IsNew": true,
			"Name":  name,
			"Error": "A category with that name already exists.",
		})
		return
	}
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.flash(w, "Added new category '"+category.Name+"'.")
	h.redirect(w, r, "/categories/"+strconv.FormatInt(category.ID, 10))
}

// CategoryEdit renders the edit form for a category.
func (h *Handlers) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}

	category, err := h.db.GetCategory(id)
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.render(w, r, "category_form.html", map[string]any{
		"ID":   category.ID,
		"Name": category.Name,
	})
}

// CategoryUpdate handles renaming a category.
func (h *Handlers) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}
	viewer := middleware.GetViewer(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.render(w, r, "category_form.html", map[string]any{
			"ID":    id,
			"Error": "A name is required.",
		})
		return
	}

	category, err := h.db.UpdateCategory(id, name, viewer.UserID)
	if errors.Is(err, database.ErrDuplicateName) {
		h.render(w, r, "category_form.html", map[string]any{
			"ID":    id,
			"Name":  name,
			"Error": "A category with that name already exists.",
		})
		return
	}
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	h.flash(w, "Changed category name to '"+category.Name+"'.")
	h.redirect(w, r, "/categories/"+strconv.FormatInt(category.ID, 10))
}

// CategoryDelete removes a category and everything in it.
func (h *Handlers) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.flashErr(w, "Invalid category ID")
		h.redirect(w, r, "/")
		return
	}
	viewer := middleware.GetViewer(r.Context())

	category, err := h.db.GetCategory(id)
	if err != nil {
		h.htmlError(w, r, err, "/")
		return
	}

	if err := h.db.DeleteCategory(id, viewer.UserID); err != nil {
		h.htmlError(w, r, err, "/categories/"+strconv.FormatInt(id, 10))
		return
	}

	h.flash(w, "Deleted category '"+category.Name+"'.")
	h.redirect(w, r, "/")
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
