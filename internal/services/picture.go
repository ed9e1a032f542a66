package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/profilehub/apiserver/config"
	"github.com/profilehub/apiserver/internal/storage"
	"github.com/profilehub/apiserver/types"
)

const storedContentType = "image/jpeg"

// UploadRepository defines persistence operations for upload ownership
// records.
type UploadRepository interface {
	Create(ctx context.Context, upload types.Upload) (types.Upload, error)
	Get(ctx context.Context, filename string) (types.Upload, error)
	Delete(ctx context.Context, filename string) error
}

// PictureService validates, resizes and stores profile pictures.
//
// Every stored picture gets an ownership record keyed by filename; deletes
// are authorized against that record, not by parsing the filename.
type PictureService struct {
	storage *storage.Storage
	uploads UploadRepository
	cfg     config.UploadConfig
	baseURL string
}

func NewPictureService(st *storage.Storage, uploads UploadRepository, cfg config.UploadConfig, baseURL string) *PictureService {
	return &PictureService{
		storage: st,
		uploads: uploads,
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ProcessedPicture describes a stored profile picture.
type ProcessedPicture struct {
	Filename string
	URL      string
	Size     int64
}

// Process validates the upload, crops it to a centered square thumbnail,
// re-encodes it as JPEG and stores it under profile_<ownerID>_<uuid>.jpg.
func (s *PictureService) Process(ctx context.Context, ownerID string, data []byte, declaredMime string) (ProcessedPicture, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(declaredMime)), "image/") {
		return ProcessedPicture{}, fmt.Errorf("%w: only image files are allowed", ErrBadInput)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return ProcessedPicture{}, fmt.Errorf("%w: file exceeds %d bytes", ErrBadInput, s.cfg.MaxBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return ProcessedPicture{}, fmt.Errorf("%w: unreadable image data", ErrBadInput)
	}

	// Equivalent of a CSS "cover" fit: scale to fill the square, crop the
	// overflow around the center.
	thumb := imaging.Fill(img, s.cfg.ThumbnailSize, s.cfg.ThumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(s.cfg.JPEGQuality)); err != nil {
		return ProcessedPicture{}, err
	}

	filename := fmt.Sprintf("profile_%s_%s.jpg", ownerID, uuid.NewString())
	size := int64(buf.Len())

	if err := s.storage.Put(ctx, filename, &buf, size, storedContentType); err != nil {
		return ProcessedPicture{}, err
	}

	if _, err := s.uploads.Create(ctx, types.Upload{
		Filename:    filename,
		OwnerID:     ownerID,
		ContentType: storedContentType,
		SizeBytes:   size,
	}); err != nil {
		// Keep storage and records consistent if the insert fails.
		_ = s.storage.Delete(ctx, filename)
		return ProcessedPicture{}, err
	}

	return ProcessedPicture{
		Filename: filename,
		URL:      s.URLFor(filename),
		Size:     size,
	}, nil
}

// Delete removes a stored picture. The caller must own it per the upload
// record; a record owned by someone else yields ErrForbidden even if the
// object exists.
func (s *PictureService) Delete(ctx context.Context, ownerID, filename string) error {
	upload, err := s.uploads.Get(ctx, filename)
	if err != nil {
		return err
	}
	if upload.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := s.storage.Delete(ctx, filename); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	return s.uploads.Delete(ctx, filename)
}

// Open streams a stored picture.
func (s *PictureService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, filename)
}

// Stat describes a stored picture.
func (s *PictureService) Stat(ctx context.Context, filename string) (storage.ObjectInfo, error) {
	return s.storage.Stat(ctx, filename)
}

// URLFor returns the public URL a stored filename is served under.
func (s *PictureService) URLFor(filename string) string {
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, filename)
}
