package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, owner_id, name, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag into the database.
// Returns store.ErrAlreadyExists if the owner already has a tag with
// that name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, owner_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID,
		t.OwnerID,
		t.Name,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTag retrieves a tag by ID, scoped to its owner.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, ownerID, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ? AND owner_id = ?`, id, ownerID)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByName retrieves an owner's tag by its exact name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? AND name = ?`, ownerID, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTag performs a full row update on an existing tag.
// Returns store.ErrNotFound if the tag does not exist and
// store.ErrAlreadyExists if the new name collides.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tags SET
			name = ?,
			created_at = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		t.Name,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
		t.ID,
		t.OwnerID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTag performs a hard delete of a tag, scoped to its owner.
// Prompt-tag links cascade via foreign keys.
// Returns store.ErrNotFound if no row matched.
func (s *Store) DeleteTag(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListTags returns all of an owner's tags ordered by name.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}

	return tags, nil
}

// SetPromptTags replaces all tag links for a prompt in a single transaction.
// It deletes existing prompt_tags rows and inserts the new set.
func (s *Store) SetPromptTags(ctx context.Context, ownerID, promptID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prompt_tags WHERE prompt_id = ?`, promptID); err != nil {
		return fmt.Errorf("delete prompt_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prompt_tags (prompt_id, tag_id, owner_id, created_at)
			VALUES (?, ?, ?, ?)`,
			promptID,
			tagID,
			ownerID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert prompt_tag: %w", err)
		}
	}

	return tx.Commit()
}

// GetPromptTagIDs returns the tag IDs linked to a prompt.
func (s *Store) GetPromptTagIDs(ctx context.Context, promptID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_id FROM prompt_tags WHERE prompt_id = ?`, promptID)
	if err != nil {
		return nil, fmt.Errorf("query prompt_tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan prompt_tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return tagIDs, nil
}

// ListTagLinks returns all of an owner's prompt-tag links.
func (s *Store) ListTagLinks(ctx context.Context, ownerID string) ([]*domain.PromptTagLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT prompt_id, tag_id, owner_id, created_at
		FROM prompt_tags WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query prompt_tags: %w", err)
	}
	defer rows.Close()

	var links []*domain.PromptTagLink
	for rows.Next() {
		var l domain.PromptTagLink
		var createdAt string
		if err := rows.Scan(&l.PromptID, &l.TagID, &l.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prompt_tag: %w", err)
		}
		l.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		links = append(links, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return links, nil
}

// GetPromptIDsForTags resolves the set of prompts matching a tag
// selection. OR mode matches prompts linked to any selected tag; AND
// mode matches prompts linked to every selected tag.
func (s *Store) GetPromptIDsForTags(ctx context.Context, ownerID string, tagIDs []string, mode domain.TagMode) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	placeholders := "?" + strings.Repeat(",?", len(tagIDs)-1)
	args := make([]any, 0, len(tagIDs)+2)
	args = append(args, ownerID)
	for _, tagID := range tagIDs {
		args = append(args, tagID)
	}

	query := `
		SELECT DISTINCT prompt_id FROM prompt_tags
		WHERE owner_id = ? AND tag_id IN (` + placeholders + `)`
	if mode == domain.TagModeAND {
		query = `
			SELECT prompt_id FROM prompt_tags
			WHERE owner_id = ? AND tag_id IN (` + placeholders + `)
			GROUP BY prompt_id
			HAVING COUNT(DISTINCT tag_id) = ?`
		args = append(args, len(tagIDs))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompt ids for tags: %w", err)
	}
	defer rows.Close()

	promptIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan prompt id: %w", err)
		}
		promptIDs = append(promptIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return promptIDs, nil
}
