package handlers

import (
	"net/http"
	"strconv"
)

// APICatalog returns every category with its nested item listing.
func (h *Handlers) APICatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.contentMgr.Catalog()
	if err != nil {
		h.jsonErrorFor(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": catalog})
}

// APICategories returns the bare category listing.
func (h *Handlers) APICategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.contentMgr.Categories()
	if err != nil {
		h.jsonErrorFor(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// APICategory returns one category with its items.
func (h *Handlers) APICategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := h.contentMgr.CategoryDetail(id)
	if err != nil {
		h.jsonErrorFor(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, category)
}

// APIItem returns one item.
func (h *Handlers) APIItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.jsonError(w, "invalid item id", http.StatusBadRequest)
		return
	}

	item, err := h.contentMgr.ItemDetail(id)
	if err != nil {
		h.jsonErrorFor(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// APIRecentItems returns the newest items, newest first. The count query
// parameter caps the listing; it defaults to the main-page count.
func (h *Handlers) APIRecentItems(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.jsonError(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = parsed
	}

	items, err := h.contentMgr.RecentItems(count)
	if err != nil {
		h.jsonErrorFor(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
