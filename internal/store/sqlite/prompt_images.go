package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/store"
)

// imageColumns is the ordered list of columns selected in image queries.
// Must match the scan order in scanPromptImage.
const imageColumns = `id, prompt_id, owner_id, storage_path, image_url, blur_hash, width, height, created_at`

// scanPromptImage scans a sql.Row (or sql.Rows via its Scan method) into
// a domain.PromptImage.
func scanPromptImage(scanner interface{ Scan(dest ...any) error }) (*domain.PromptImage, error) {
	var img domain.PromptImage

	var (
		imageURL  sql.NullString
		blurHash  sql.NullString
		createdAt string
	)

	err := scanner.Scan(
		&img.ID,
		&img.PromptID,
		&img.OwnerID,
		&img.StoragePath,
		&imageURL,
		&blurHash,
		&img.Width,
		&img.Height,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	img.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		img.ImageURL = imageURL.String
	}
	if blurHash.Valid {
		img.BlurHash = blurHash.String
	}

	return &img, nil
}

// CreatePromptImage inserts a new image row.
// Returns store.ErrAlreadyExists if the image ID already exists.
func (s *Store) CreatePromptImage(ctx context.Context, img *domain.PromptImage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompt_images (id, prompt_id, owner_id, storage_path, image_url, blur_hash, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID,
		img.PromptID,
		img.OwnerID,
		img.StoragePath,
		nullString(img.ImageURL),
		nullString(img.BlurHash),
		img.Width,
		img.Height,
		formatTime(img.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPromptImage retrieves an image row by ID, scoped to its owner.
// Returns store.ErrNotFound if the image does not exist.
func (s *Store) GetPromptImage(ctx context.Context, ownerID, id string) (*domain.PromptImage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM prompt_images WHERE id = ? AND owner_id = ?`, id, ownerID)

	img, err := scanPromptImage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ListPromptImages returns a prompt's image rows in upload order.
func (s *Store) ListPromptImages(ctx context.Context, promptID string) ([]*domain.PromptImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM prompt_images WHERE prompt_id = ? ORDER BY created_at ASC, id ASC`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*domain.PromptImage
	for rows.Next() {
		img, err := scanPromptImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if images == nil {
		images = []*domain.PromptImage{}
	}

	return images, nil
}

// DeletePromptImage performs a hard delete of an image row, scoped to
// its owner. Returns store.ErrNotFound if no row matched.
func (s *Store) DeletePromptImage(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM prompt_images WHERE id = ? AND owner_id = ?`, id, ownerID)
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

// ListAllImages returns every image row across all owners. Used by the
// cleanup tool to reconcile stored objects against the database.
func (s *Store) ListAllImages(ctx context.Context) ([]*domain.PromptImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM prompt_images ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*domain.PromptImage
	for rows.Next() {
		img, err := scanPromptImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if images == nil {
		images = []*domain.PromptImage{}
	}

	return images, nil
}
