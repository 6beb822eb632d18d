package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"vitaminderAPI/internal/catalog"
	"vitaminderAPI/middleware"
	"vitaminderAPI/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	objective := r.URL.Query().Get("objective")
	query := r.URL.Query().Get("q")

	supplements, err := h.catalogService.GetCatalog(ctx, objective, query)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, supplements)
}

func (h *CatalogHandler) GetCatalogSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid catalog supplement id")
		return
	}

	supp, err := h.catalogService.GetCatalogSupplement(ctx, id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Catalog supplement not found")
		return
	}

	respondWithJSON(w, http.StatusOK, supp)
}

func (h *CatalogHandler) AddCatalogSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req catalog.CreateSupplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BaseScore < 0 || req.BaseScore > 10 {
		respondWithError(w, http.StatusBadRequest, "base_score must be between 0 and 10")
		return
	}

	supp, err := h.catalogService.AddCatalogSupplement(ctx, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, supp)
}

func (h *CatalogHandler) UpdateCatalogSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid catalog supplement id")
		return
	}

	var req catalog.UpdateSupplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.BaseScore != nil && (*req.BaseScore < 0 || *req.BaseScore > 10) {
		respondWithError(w, http.StatusBadRequest, "base_score must be between 0 and 10")
		return
	}

	supp, err := h.catalogService.UpdateCatalogSupplement(ctx, id, &req)
	if err != nil {
		if err.Error() == "catalog supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, supp)
}

func (h *CatalogHandler) RemoveCatalogSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid catalog supplement id")
		return
	}

	if err := h.catalogService.RemoveCatalogSupplement(ctx, id); err != nil {
		if err.Error() == "catalog supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Catalog supplement removed successfully"})
}
