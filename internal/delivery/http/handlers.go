package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/middleware"
	"github.com/scholar-feed/backend/internal/usecase"
)

type Handler struct {
	authUsecase           *usecase.AuthUsecase
	interestUsecase       *usecase.InterestUsecase
	recommendationUsecase *usecase.RecommendationUsecase
	logger                zerolog.Logger
}

func NewHandler(auth *usecase.AuthUsecase, interests *usecase.InterestUsecase, recommendations *usecase.RecommendationUsecase, logger zerolog.Logger) *Handler {
	return &Handler{
		authUsecase:           auth,
		interestUsecase:       interests,
		recommendationUsecase: recommendations,
		logger:                logger,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps a usecase error onto a status code. fallback is the
// message for store and upstream failures; upstream failures also carry the
// cause in details.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, usecase.ErrNoInterests):
		writeError(w, http.StatusBadRequest, "No interests found")
	case errors.Is(err, usecase.ErrMissingQuery):
		writeError(w, http.StatusBadRequest, "Search query is required")
	case errors.Is(err, domain.ErrValidation):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrUpstream):
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && ue.Source == "gemini" {
			fallback = "AI processing failed"
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback, Details: err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Auth handlers

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.authUsecase.Register(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.authUsecase.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeFailure(w, r, err, "Sign in failed")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Interest handlers

type updateInterestsRequest struct {
	Interests json.RawMessage `json:"interests"`
}

type updateInterestsResponse struct {
	Success   bool     `json:"success"`
	Interests []string `json:"interests"`
}

func (h *Handler) UpdateInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateInterestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	interests, err := usecase.DecodeInterests(req.Interests)
	if err != nil {
		h.writeFailure(w, r, err, "Interest update failed")
		return
	}

	saved, err := h.interestUsecase.SetInterests(r.Context(), userID, interests)
	if err != nil {
		h.writeFailure(w, r, err, "Interest update failed")
		return
	}

	writeJSON(w, http.StatusOK, updateInterestsResponse{Success: true, Interests: saved})
}

func (h *Handler) GetInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.interestUsecase.GetInterests(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, r, err, "Failed to fetch interests")
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// Recommendation handlers

type personalizedResponse struct {
	Recommendations []domain.Paper `json:"recommendations"`
}

type researchersResponse struct {
	Researchers []domain.Researcher `json:"researchers"`
}

func (h *Handler) GetPersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	papers, err := h.recommendationUsecase.GetPersonalizedRecommendations(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, r, err, "Personalized recommendations failed")
		return
	}

	writeJSON(w, http.StatusOK, personalizedResponse{Recommendations: papers})
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	optimize, _ := strconv.ParseBool(r.URL.Query().Get("optimize"))

	papers, err := h.recommendationUsecase.GetRecommendations(r.Context(), query, optimize)
	if err != nil {
		h.writeFailure(w, r, err, "Paper recommendation failed")
		return
	}

	writeJSON(w, http.StatusOK, papers)
}

func (h *Handler) SearchResearchers(w http.ResponseWriter, r *http.Request) {
	researchers, err := h.recommendationUsecase.SearchResearchers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeFailure(w, r, err, "Researcher search failed")
		return
	}

	writeJSON(w, http.StatusOK, researchersResponse{Researchers: researchers})
}
