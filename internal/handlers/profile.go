package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/internal/store"
	"github.com/profilehub/apiserver/types"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// ProfileHandler provides HTTP handlers for profiles.
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler constructs a handler with the provided service.
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRouter registers profile routes on the given router. Mutating
// routes require the auth middleware; lookups and search are public.
func ProfileRouter(r chi.Router, profileService *services.ProfileService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewProfileHandler(profileService)

	r.With(authMiddleware).Post("/", handler.Create)
	r.With(authMiddleware).Get("/me", handler.GetMine)
	r.With(authMiddleware).Put("/me", handler.UpdateMine)
	r.With(authMiddleware).Patch("/me/picture", handler.SetPicture)
	r.With(authMiddleware).Delete("/me", handler.DeleteMine)
	r.Get("/search", handler.Search)
	r.Get("/username/{username}", handler.GetByUsername)
	r.Get("/user/{userID}", handler.GetByUser)
}

// Create creates the caller's profile. A second create for the same user
// fails with a conflict.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	fields, ok := decodeProfileFields(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.Create(r.Context(), user.ID, fields)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "Profile already exists", "A profile already exists for this user. Use PUT to update.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, ProfileResponse{
		Message: "Profile created successfully",
		Profile: profile,
	})
}

// GetMine returns the caller's profile.
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	profile, err := h.profileService.GetByOwner(r.Context(), user.ID)
	if err != nil {
		writeProfileLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

// UpdateMine applies a coalescing partial update to the caller's profile:
// omitted and empty fields keep their stored values.
func (h *ProfileHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	fields, ok := decodeProfileFields(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.Update(r.Context(), user.ID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found", "No profile found for this user. Create one first.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "Profile updated successfully",
		Profile: profile,
	})
}

// SetPicture updates the caller's profile picture reference.
func (h *ProfileHandler) SetPicture(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req SetPictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.ProfilePicture) == "" {
		writeError(w, http.StatusBadRequest, "Profile picture required", "Please provide a profile picture URL")
		return
	}

	profile, err := h.profileService.SetPicture(r.Context(), user.ID, req.ProfilePicture)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found", "No profile found for this user. Create one first.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to update profile picture")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "Profile picture updated successfully",
		Profile: profile,
	})
}

// DeleteMine deletes the caller's profile.
func (h *ProfileHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	if err := h.profileService.Delete(r.Context(), user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found", "No profile found for this user")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to delete profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted successfully"})
}

// Search matches profiles by substring across name, bio, skills and
// interests. No match yields an empty list, not an error.
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "Search query required", "Please provide a search query")
		return
	}

	limit, offset, err := parseSearchRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	profiles, err := h.profileService.Search(r.Context(), q, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to search profiles")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Profiles: profiles,
		Count:    len(profiles),
		Query:    q,
	})
}

// GetByUsername returns a profile looked up by the owner's username.
func (h *ProfileHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.profileService.GetByUsername(r.Context(), username)
	if err != nil {
		writeProfileLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

// GetByUser returns a profile looked up by the owner's user id.
func (h *ProfileHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.profileService.GetByOwner(r.Context(), userID)
	if err != nil {
		writeProfileLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

// ProfileResponse wraps a profile payload.
type ProfileResponse struct {
	Message string        `json:"message,omitempty"`
	Profile types.Profile `json:"profile"`
}

// SearchResponse is the paginated search payload.
type SearchResponse struct {
	Profiles []types.Profile `json:"profiles"`
	Count    int             `json:"count"`
	Query    string          `json:"query"`
}

type SetPictureRequest struct {
	ProfilePicture string `json:"profile_picture"`
}

func decodeProfileFields(w http.ResponseWriter, r *http.Request) (types.ProfileFields, bool) {
	var fields types.ProfileFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return types.ProfileFields{}, false
	}
	if details := validateProfileFields(fields); len(details) > 0 {
		writeValidationError(w, details)
		return types.ProfileFields{}, false
	}
	return fields, true
}

func writeProfileLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found", "No profile found for this user")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error", "Failed to fetch profile")
}

func parseSearchRange(r *http.Request) (limit, offset int, err error) {
	limit = defaultSearchLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("invalid offset")
		}
	}

	return limit, offset, nil
}
