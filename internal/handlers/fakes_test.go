package handlers

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/profilehub/apiserver/internal/store"
	"github.com/profilehub/apiserver/types"
)

// fakeUserRepo is an in-memory services.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// fakeProfileRepo is an in-memory services.ProfileRepository implementing
// the same coalescing update contract as the SQL repository.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]types.Profile
	order    []string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]types.Profile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[ownerID]; ok {
		return types.Profile{}, store.ErrConflict
	}
	profile := types.Profile{ID: uuid.NewString(), UserID: ownerID}
	applyFields(&profile, fields)
	f.profiles[ownerID] = profile
	f.order = append(f.order, ownerID)
	return profile, nil
}

func (f *fakeProfileRepo) GetByOwner(ctx context.Context, ownerID string) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[ownerID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) GetByUsername(ctx context.Context, username string) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.Username == username {
			return profile, nil
		}
	}
	return types.Profile{}, store.ErrNotFound
}

func (f *fakeProfileRepo) Update(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[ownerID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	applyFields(&profile, fields)
	f.profiles[ownerID] = profile
	return profile, nil
}

func (f *fakeProfileRepo) Search(ctx context.Context, q string, limit, offset int) ([]types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []types.Profile
	for _, ownerID := range f.order {
		profile, ok := f.profiles[ownerID]
		if !ok {
			continue
		}
		if containsFold(profile.FirstName, q) || containsFold(profile.LastName, q) ||
			containsFold(profile.Bio, q) || containsFold(profile.Skills, q) ||
			containsFold(profile.Interests, q) {
			matched = append(matched, profile)
		}
	}
	if offset >= len(matched) {
		return []types.Profile{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeProfileRepo) SetPicture(ctx context.Context, ownerID, pictureRef string) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[ownerID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	profile.ProfilePicture = &pictureRef
	f.profiles[ownerID] = profile
	return profile, nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[ownerID]; !ok {
		return store.ErrNotFound
	}
	delete(f.profiles, ownerID)
	return nil
}

// fakeUploadRepo is an in-memory services.UploadRepository.
type fakeUploadRepo struct {
	mu      sync.Mutex
	uploads map[string]types.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[string]types.Upload)}
}

func (f *fakeUploadRepo) Create(ctx context.Context, upload types.Upload) (types.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploads[upload.Filename]; ok {
		return types.Upload{}, store.ErrConflict
	}
	f.uploads[upload.Filename] = upload
	return upload, nil
}

func (f *fakeUploadRepo) Get(ctx context.Context, filename string) (types.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	upload, ok := f.uploads[filename]
	if !ok {
		return types.Upload{}, store.ErrNotFound
	}
	return upload, nil
}

func (f *fakeUploadRepo) Delete(ctx context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploads[filename]; !ok {
		return store.ErrNotFound
	}
	delete(f.uploads, filename)
	return nil
}

// applyFields mirrors the coalescing SQL update: nil or empty inputs leave
// the stored value untouched.
func applyFields(profile *types.Profile, fields types.ProfileFields) {
	if name := types.JoinName(fields.FirstName, fields.LastName); name != "" {
		profile.FirstName, profile.LastName = types.SplitName(&name)
	}
	setIfPresent(&profile.Bio, fields.Bio)
	setIfPresent(&profile.Location, fields.Location)
	setIfPresent(&profile.Interests, fields.Interests)
	setIfPresent(&profile.Skills, fields.Skills)
	setIfPresent(&profile.Experience, fields.Experience)
	setIfPresent(&profile.Education, fields.Education)
	setIfPresent(&profile.Social, fields.Social)
	setIfPresent(&profile.Projects, fields.Projects)
}

func setIfPresent(dst **string, src *string) {
	if src != nil && *src != "" {
		value := *src
		*dst = &value
	}
}

func containsFold(value *string, q string) bool {
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*value), strings.ToLower(q))
}
