package types

import "time"

// Upload is the ownership record for a stored profile picture. Deletes are
// authorized against OwnerID rather than by inspecting the filename.
type Upload struct {
	// Filename is the object key in storage, of the form
	// profile_<ownerID>_<uuid>.jpg.
	Filename string `json:"filename" db:"filename"`

	// OwnerID is the user that uploaded the file and may delete it.
	OwnerID string `json:"owner_id" db:"owner_id"`

	// ContentType is the stored content type (always image/jpeg after
	// re-encoding).
	ContentType string `json:"content_type" db:"content_type"`

	// SizeBytes is the stored object size after processing.
	SizeBytes int64 `json:"size_bytes" db:"size_bytes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
