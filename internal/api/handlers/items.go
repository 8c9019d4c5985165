package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evan/item-vault/internal/api/middleware"
	"github.com/evan/item-vault/internal/api/response"
	"github.com/evan/item-vault/internal/service"
	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

type CreateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List returns a page of the caller's items; superusers see every item.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	skip, limit := pagination(r)

	items, count, err := h.itemService.List(r.Context(), caller, skip, limit)
	if err != nil {
		log.Printf("ERROR [items.List] failed to list items: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	data := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, toItemResponse(item))
	}
	response.JSON(w, http.StatusOK, ItemsResponse{Data: data, Count: count})
}

// Create stores a new item owned by the caller.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == nil {
		response.Detail(w, http.StatusBadRequest, "Title is required")
		return
	}

	item, err := h.itemService.Create(r.Context(), caller, service.CreateItemInput{
		Title:       *req.Title,
		Description: req.Description,
	})
	if err != nil {
		log.Printf("ERROR [items.Create] failed to create item: %v", err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, toItemResponse(item))
}

// Get returns an item by id for its owner or a superuser.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	item, err := h.itemService.Get(r.Context(), caller, id)
	if err != nil {
		h.respondItemError(w, "items.Get", err)
		return
	}

	response.JSON(w, http.StatusOK, toItemResponse(item))
}

// Update replaces an item's fields for its owner or a superuser.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title != nil && (len(*req.Title) < 1 || len(*req.Title) > 255) {
		response.Detail(w, http.StatusBadRequest, "Title must be between 1 and 255 characters")
		return
	}

	item, err := h.itemService.Update(r.Context(), caller, id, service.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondItemError(w, "items.Update", err)
		return
	}

	response.JSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes an item for its owner or a superuser.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := parseUUID(chi.URLParam(r, "id"))
	if !ok {
		response.Detail(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	if err := h.itemService.Delete(r.Context(), caller, id); err != nil {
		h.respondItemError(w, "items.Delete", err)
		return
	}

	response.JSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

func (h *ItemHandler) respondItemError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.Detail(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, service.ErrForbidden):
		response.Detail(w, http.StatusForbidden, "Not enough permissions")
	default:
		log.Printf("ERROR [%s] %v", op, err)
		response.Detail(w, http.StatusInternalServerError, "Internal server error")
	}
}
