package services

import (
	"context"

	"github.com/profilehub/apiserver/types"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error)
	GetByOwner(ctx context.Context, ownerID string) (types.Profile, error)
	GetByUsername(ctx context.Context, username string) (types.Profile, error)
	Update(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error)
	Search(ctx context.Context, q string, limit, offset int) ([]types.Profile, error)
	SetPicture(ctx context.Context, ownerID, pictureRef string) (types.Profile, error)
	Delete(ctx context.Context, ownerID string) error
}

// ProfileService encapsulates profile use-cases.
type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Create(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	return s.repo.Create(ctx, ownerID, fields)
}

func (s *ProfileService) GetByOwner(ctx context.Context, ownerID string) (types.Profile, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (types.Profile, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *ProfileService) Update(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	return s.repo.Update(ctx, ownerID, fields)
}

func (s *ProfileService) Search(ctx context.Context, q string, limit, offset int) ([]types.Profile, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.Search(ctx, q, limit, offset)
}

func (s *ProfileService) SetPicture(ctx context.Context, ownerID, pictureRef string) (types.Profile, error) {
	return s.repo.SetPicture(ctx, ownerID, pictureRef)
}

func (s *ProfileService) Delete(ctx context.Context, ownerID string) error {
	return s.repo.Delete(ctx, ownerID)
}
