package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"vitaminderAPI/middleware"
	"vitaminderAPI/services"
)

type RecommendationHandler struct {
	recommendationService *services.RecommendationService
}

func NewRecommendationHandler(recommendationService *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	// The fallback calls a remote model, so this handler gets a longer budget
	// than the usual 5s.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	objective := r.URL.Query().Get("objective")
	if objective == "" {
		respondWithError(w, http.StatusBadRequest, "Search query parameter 'objective' is required")
		return
	}

	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 10 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 10")
			return
		}
		limit = parsed
	}

	recommendations, err := h.recommendationService.Recommend(ctx, objective, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, recommendations)
}
