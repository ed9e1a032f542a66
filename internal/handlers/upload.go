package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/internal/storage"
	"github.com/profilehub/apiserver/internal/store"
)

const (
	maxMultipartMemory = 8 << 20
	formFieldImage     = "image"
)

// UploadHandler provides HTTP handlers for profile-picture uploads.
type UploadHandler struct {
	pictures *services.PictureService
	maxBytes int64
}

// NewUploadHandler constructs a handler with the provided service.
func NewUploadHandler(pictures *services.PictureService, maxBytes int64) *UploadHandler {
	return &UploadHandler{pictures: pictures, maxBytes: maxBytes}
}

// UploadRouter registers upload routes on the given router.
func UploadRouter(r chi.Router, pictures *services.PictureService, maxBytes int64, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUploadHandler(pictures, maxBytes)

	r.With(authMiddleware).Post("/profile-picture", handler.Upload)
	r.Get("/profile-picture/{filename}", handler.Info)
	r.With(authMiddleware).Delete("/profile-picture/{filename}", handler.Delete)
}

// Upload accepts a multipart image, processes it into a square JPEG
// thumbnail and stores it.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Expected a multipart form upload")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded", "Please upload an image file")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, h.maxBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "File too large", err.Error())
		return
	}

	picture, err := h.pictures.Process(r.Context(), user.ID, data, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, services.ErrBadInput) {
			writeError(w, http.StatusBadRequest, "Invalid file", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to store profile picture")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:  "Profile picture uploaded successfully",
		ImageURL: picture.URL,
		Filename: picture.Filename,
	})
}

// Info describes a stored picture.
func (h *UploadHandler) Info(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	info, err := h.pictures.Stat(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "File not found", "The specified file does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to stat file")
		return
	}

	writeJSON(w, http.StatusOK, FileInfoResponse{
		Filename: filename,
		Size:     info.Size,
		Modified: info.LastModified,
	})
}

// Delete removes a stored picture. Only its owner may delete it.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	filename := chi.URLParam(r, "filename")

	if err := h.pictures.Delete(r.Context(), user.ID, filename); err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "Access denied", "You can only delete your own files")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "File not found", "The specified file does not exist")
		default:
			writeError(w, http.StatusInternalServerError, "Internal error", "Failed to delete file")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

// ServeFile streams a stored picture, backing the public /uploads URLs.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if strings.TrimSpace(filename) == "" {
		writeError(w, http.StatusNotFound, "File not found", "The specified file does not exist")
		return
	}

	reader, err := h.pictures.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "File not found", "The specified file does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", "Failed to read file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = io.Copy(w, reader)
}

// UploadResponse is the successful upload payload.
type UploadResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

// FileInfoResponse describes a stored file.
type FileInfoResponse struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
