package domain

import "time"

// Prompt is a user-authored text entry, optionally illustrated.
// Every prompt belongs to exactly one owner; the owner filter is the only
// access boundary in the system.
type Prompt struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Content string `json:"content"`

	// ImagePath is the legacy single-image reference: either the storage
	// path of the prompt's primary image, or an absolute URL for rows
	// written before private storage was introduced. Empty when the prompt
	// has no primary image. PromptImage rows track the full image set.
	ImagePath string `json:"image_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (p *Prompt) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// PromptImage is an uploaded, compressed image object attached to a prompt.
// The blur hash is computed at upload time and lets clients render a
// placeholder while the signed URL resolves.
type PromptImage struct {
	ID          string    `json:"id"`
	PromptID    string    `json:"prompt_id"`
	OwnerID     string    `json:"owner_id"`
	StoragePath string    `json:"storage_path"`
	ImageURL    string    `json:"image_url,omitempty"`
	BlurHash    string    `json:"blur_hash,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
