package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"vitaminderAPI/internal/intake"
	"vitaminderAPI/internal/supplement"
	"vitaminderAPI/middleware"
	"vitaminderAPI/services"
)

type SupplementHandler struct {
	supplementService *services.SupplementService
}

func NewSupplementHandler(supplementService *services.SupplementService) *SupplementHandler {
	return &SupplementHandler{
		supplementService: supplementService,
	}
}

// validateSchedule rejects malformed recurrence input at the HTTP boundary.
func validateSchedule(recurrenceDays []int, timeOfDay string, dosage int) string {
	if len(recurrenceDays) == 0 {
		return "recurrence_days must not be empty"
	}
	for _, d := range recurrenceDays {
		if d < 0 || d > 6 {
			return "recurrence_days values must be between 0 (Sunday) and 6 (Saturday)"
		}
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return "time_of_day must be in HH:MM format"
	}
	if dosage <= 0 {
		return "dosage must be positive"
	}
	return ""
}

func (h *SupplementHandler) CreateSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req supplement.CreateSupplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	if msg := validateSchedule(req.RecurrenceDays, req.TimeOfDay, req.Dosage); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	supp, err := h.supplementService.CreateSupplement(ctx, clerkID, &req)
	if err != nil {
		log.Printf("CreateSupplement Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create supplement")
		return
	}

	respondWithJSON(w, http.StatusCreated, supp)
}

func (h *SupplementHandler) GetSupplements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	supplements, err := h.supplementService.GetUserSupplements(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, supplements)
}

func (h *SupplementHandler) UpdateSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	supplementID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplement id")
		return
	}

	var req supplement.UpdateSupplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RecurrenceDays != nil {
		for _, d := range req.RecurrenceDays {
			if d < 0 || d > 6 {
				respondWithError(w, http.StatusBadRequest, "recurrence_days values must be between 0 (Sunday) and 6 (Saturday)")
				return
			}
		}
		if len(req.RecurrenceDays) == 0 {
			respondWithError(w, http.StatusBadRequest, "recurrence_days must not be empty")
			return
		}
	}
	if req.TimeOfDay != nil {
		if _, err := time.Parse("15:04", *req.TimeOfDay); err != nil {
			respondWithError(w, http.StatusBadRequest, "time_of_day must be in HH:MM format")
			return
		}
	}
	if req.Dosage != nil && *req.Dosage <= 0 {
		respondWithError(w, http.StatusBadRequest, "dosage must be positive")
		return
	}

	supp, err := h.supplementService.UpdateSupplement(ctx, clerkID, supplementID, &req)
	if err != nil {
		if err.Error() == "supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, supp)
}

func (h *SupplementHandler) DeleteSupplement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	supplementID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplement id")
		return
	}

	if err := h.supplementService.DeleteSupplement(ctx, clerkID, supplementID); err != nil {
		if err.Error() == "supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Supplement deleted successfully"})
}

func (h *SupplementHandler) MarkTaken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	supplementID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplement id")
		return
	}

	event, err := h.supplementService.MarkTaken(ctx, clerkID, supplementID, time.Now())
	if err != nil {
		log.Printf("MarkTaken Handler: Service error: %v", err)
		if err.Error() == "supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to record intake")
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

func (h *SupplementHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	today, err := h.supplementService.GetToday(ctx, clerkID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

func (h *SupplementHandler) GetIntakes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	now := time.Now()
	start := now.AddDate(0, 0, -7)
	end := now

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "start must be RFC3339")
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "end must be RFC3339")
			return
		}
		end = parsed
	}

	events, err := h.supplementService.GetIntakes(ctx, clerkID, start, end)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if events == nil {
		events = []intake.Event{}
	}

	respondWithJSON(w, http.StatusOK, events)
}

func (h *SupplementHandler) GetAdherence(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	supplementID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplement id")
		return
	}

	windowDays := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			respondWithError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		windowDays = parsed
	}

	adherence, err := h.supplementService.GetAdherence(ctx, clerkID, supplementID, windowDays, time.Now())
	if err != nil {
		if err.Error() == "supplement not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, adherence)
}
