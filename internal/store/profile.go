package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/profilehub/apiserver/types"
)

const profileColumns = `id, user_id, name, bio, location, interests, skills,
		experience, education, social_links, projects, profile_picture, created_at, updated_at`

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile for the given owner. The one-profile-per-owner
// rule is enforced by the unique constraint on user_id, so concurrent
// creates for the same owner cannot both succeed.
func (r *ProfileRepository) Create(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	now := time.Now()
	id := uuid.NewString()

	const query = `
		INSERT INTO profiles (id, user_id, name, bio, location, interests, skills,
			experience, education, social_links, projects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		id,
		ownerID,
		nullify(joinedName(fields)),
		nullifyPtr(fields.Bio),
		nullifyPtr(fields.Location),
		nullifyPtr(fields.Interests),
		nullifyPtr(fields.Skills),
		nullifyPtr(fields.Experience),
		nullifyPtr(fields.Education),
		nullifyPtr(fields.Social),
		nullifyPtr(fields.Projects),
		now,
		now,
	); err != nil {
		if isUniqueViolation(err) {
			return types.Profile{}, ErrConflict
		}
		return types.Profile{}, err
	}

	return r.GetByOwner(ctx, ownerID)
}

func (r *ProfileRepository) GetByOwner(ctx context.Context, ownerID string) (types.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, ownerID))
}

// GetByUsername resolves the owning user by name and returns their profile.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (types.Profile, error) {
	const query = `
		SELECT p.id, p.user_id, p.name, p.bio, p.location, p.interests, p.skills,
			p.experience, p.education, p.social_links, p.projects, p.profile_picture,
			p.created_at, p.updated_at
		FROM profiles p
		JOIN users u ON p.user_id = u.id
		WHERE u.username = $1`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, username))
}

// Update applies a coalescing partial update: a NULL parameter (field
// omitted or empty) leaves the stored column untouched.
func (r *ProfileRepository) Update(ctx context.Context, ownerID string, fields types.ProfileFields) (types.Profile, error) {
	const query = `
		UPDATE profiles
		SET name = COALESCE($1, name),
			bio = COALESCE($2, bio),
			location = COALESCE($3, location),
			interests = COALESCE($4, interests),
			skills = COALESCE($5, skills),
			experience = COALESCE($6, experience),
			education = COALESCE($7, education),
			social_links = COALESCE($8, social_links),
			projects = COALESCE($9, projects),
			updated_at = $10
		WHERE user_id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		nullify(joinedName(fields)),
		nullifyPtr(fields.Bio),
		nullifyPtr(fields.Location),
		nullifyPtr(fields.Interests),
		nullifyPtr(fields.Skills),
		nullifyPtr(fields.Experience),
		nullifyPtr(fields.Education),
		nullifyPtr(fields.Social),
		nullifyPtr(fields.Projects),
		time.Now(),
		ownerID,
	)
	if err != nil {
		return types.Profile{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Profile{}, err
	}
	if affected == 0 {
		return types.Profile{}, ErrNotFound
	}

	return r.GetByOwner(ctx, ownerID)
}

// Search matches the query as a case-insensitive substring across name,
// bio, skills and interests, joined with the owning user. Results are in
// insertion order.
func (r *ProfileRepository) Search(ctx context.Context, q string, limit, offset int) ([]types.Profile, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	const query = `
		SELECT p.id, p.user_id, p.name, p.bio, p.location, p.interests, p.skills,
			p.experience, p.education, p.social_links, p.projects, p.profile_picture,
			p.created_at, p.updated_at, u.username, u.email
		FROM profiles p
		JOIN users u ON p.user_id = u.id
		WHERE p.name ILIKE $1 OR p.bio ILIKE $1 OR p.skills ILIKE $1 OR p.interests ILIKE $1
		ORDER BY p.created_at, p.id
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, "%"+q+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]types.Profile, 0, limit)
	for rows.Next() {
		var profile types.Profile
		var name *string
		if err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&name,
			&profile.Bio,
			&profile.Location,
			&profile.Interests,
			&profile.Skills,
			&profile.Experience,
			&profile.Education,
			&profile.Social,
			&profile.Projects,
			&profile.ProfilePicture,
			&profile.CreatedAt,
			&profile.UpdatedAt,
			&profile.Username,
			&profile.Email,
		); err != nil {
			return nil, err
		}
		profile.FirstName, profile.LastName = types.SplitName(name)
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// SetPicture updates only the profile picture reference.
func (r *ProfileRepository) SetPicture(ctx context.Context, ownerID, pictureRef string) (types.Profile, error) {
	const query = `
		UPDATE profiles
		SET profile_picture = $1, updated_at = $2
		WHERE user_id = $3`
	result, err := r.db.ExecContext(ctx, query, pictureRef, time.Now(), ownerID)
	if err != nil {
		return types.Profile{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Profile{}, err
	}
	if affected == 0 {
		return types.Profile{}, ErrNotFound
	}

	return r.GetByOwner(ctx, ownerID)
}

func (r *ProfileRepository) Delete(ctx context.Context, ownerID string) error {
	const query = `DELETE FROM profiles WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) scanProfile(row *sql.Row) (types.Profile, error) {
	var profile types.Profile
	var name *string
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&name,
		&profile.Bio,
		&profile.Location,
		&profile.Interests,
		&profile.Skills,
		&profile.Experience,
		&profile.Education,
		&profile.Social,
		&profile.Projects,
		&profile.ProfilePicture,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	profile.FirstName, profile.LastName = types.SplitName(name)
	return profile, nil
}

// joinedName collapses the name parts into the stored name value; "" means
// neither part was provided.
func joinedName(fields types.ProfileFields) string {
	return types.JoinName(fields.FirstName, fields.LastName)
}

// nullify maps "" to SQL NULL so that COALESCE leaves the stored value
// untouched. Empty strings are treated the same as omitted fields.
func nullify(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullifyPtr(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return nullify(*value)
}
