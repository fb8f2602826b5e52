package domain

import "time"

// Tag is a user-defined label applied to prompts for filtering.
// Names are unique per owner and compared case-sensitively.
type Tag struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// PromptTagLink is the many-to-many join between prompts and tags.
// At most one link exists per (prompt, tag) pair. On prompt edit the full
// link set for the prompt is replaced wholesale.
type PromptTagLink struct {
	PromptID  string    `json:"prompt_id"`
	TagID     string    `json:"tag_id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
