package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/store"
)

// promptColumns is the ordered list of columns selected in prompt queries.
// Must match the scan order in scanPrompt.
const promptColumns = `id, owner_id, content, image_path, created_at, updated_at`

// scanPrompt scans a sql.Row (or sql.Rows via its Scan method) into a domain.Prompt.
func scanPrompt(scanner interface{ Scan(dest ...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt

	var (
		imagePath sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Content,
		&imagePath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if imagePath.Valid {
		p.ImagePath = imagePath.String
	}

	return &p, nil
}

// CreatePrompt inserts a new prompt into the database.
// Returns store.ErrAlreadyExists if the prompt ID already exists.
func (s *Store) CreatePrompt(ctx context.Context, p *domain.Prompt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, owner_id, content, image_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerID,
		p.Content,
		nullString(p.ImagePath),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPrompt retrieves a prompt by ID, scoped to its owner.
// Returns store.ErrNotFound if the prompt does not exist or belongs to
// a different owner.
func (s *Store) GetPrompt(ctx context.Context, ownerID, id string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE id = ? AND owner_id = ?`, id, ownerID)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePrompt performs a full row update on an existing prompt.
// The owner_id in the WHERE clause keeps one user from touching
// another user's rows. Returns store.ErrNotFound if no row matched.
func (s *Store) UpdatePrompt(ctx context.Context, p *domain.Prompt) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET
			content = ?,
			image_path = ?,
			created_at = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		p.Content,
		nullString(p.ImagePath),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		p.ID,
		p.OwnerID,
	)
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

// DeletePrompt performs a hard delete of a prompt, scoped to its owner.
// Tag links and image rows cascade via foreign keys.
// Returns store.ErrNotFound if no row matched.
func (s *Store) DeletePrompt(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM prompts WHERE id = ? AND owner_id = ?`, id, ownerID)
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

// ListPrompts returns one page of an owner's prompts ordered by the
// query's sort field. Rows with equal sort values are ordered by id
// ascending so that pages never overlap or skip under pagination.
func (s *Store) ListPrompts(ctx context.Context, ownerID string, q store.FeedQuery) ([]*domain.Prompt, error) {
	q.Normalize()

	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(`SELECT ` + promptColumns + ` FROM prompts WHERE owner_id = ?`)

	if q.IDs != nil {
		if len(q.IDs) == 0 {
			return []*domain.Prompt{}, nil
		}
		sb.WriteString(` AND id IN (?` + strings.Repeat(",?", len(q.IDs)-1) + `)`)
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}

	// Sort field and direction come from Normalize's fixed vocabulary,
	// never from raw user input.
	fmt.Fprintf(&sb, ` ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`, q.SortField, strings.ToUpper(q.SortDir))
	args = append(args, q.PageSize, q.Page*q.PageSize)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if prompts == nil {
		prompts = []*domain.Prompt{}
	}

	return prompts, nil
}

// CountPrompts returns the number of prompts an owner has.
func (s *Store) CountPrompts(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prompts WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListAllPrompts returns every prompt across all owners, oldest first.
// Used by the search index rebuild at startup.
func (s *Store) ListAllPrompts(ctx context.Context) ([]*domain.Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+promptColumns+` FROM prompts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prompts := []*domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
