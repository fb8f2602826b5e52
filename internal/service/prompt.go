package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	domainerrors "github.com/promptvault/promptvault-server/internal/errors"
	"github.com/promptvault/promptvault-server/internal/id"
	"github.com/promptvault/promptvault-server/internal/images"
	"github.com/promptvault/promptvault-server/internal/search"
	"github.com/promptvault/promptvault-server/internal/storage"
	"github.com/promptvault/promptvault-server/internal/store"
	"github.com/promptvault/promptvault-server/internal/throttle"
)

// Throttle actions. Each action cools down independently per user, so a
// tag rename never blocks a prompt delete. Creating and editing prompts
// is never throttled; the cooldown covers deletes, tag mutations, and
// image attach/detach.
const (
	actionPrompt = "prompt"
	actionTag    = "tag"
	actionImage  = "image"
)

func throttleKey(userID, action string) string {
	return userID + ":" + action
}

// PromptService orchestrates prompt CRUD, tag links, and image
// attachments. Destructive mutations are throttled per user, and every
// mutation invalidates the owner's cached feed pages.
type PromptService struct {
	store    store.Store
	search   *search.Index
	objects  storage.ObjectStore
	resolver *storage.Resolver
	limiter  *throttle.Limiter
	cache    *ViewCache
	logger   *slog.Logger
}

// NewPromptService creates a new prompt service.
func NewPromptService(
	store store.Store,
	searchIndex *search.Index,
	objects storage.ObjectStore,
	resolver *storage.Resolver,
	limiter *throttle.Limiter,
	cache *ViewCache,
	logger *slog.Logger,
) *PromptService {
	return &PromptService{
		store:    store,
		search:   searchIndex,
		objects:  objects,
		resolver: resolver,
		limiter:  limiter,
		cache:    cache,
		logger:   logger,
	}
}

// CreatePromptRequest contains new prompt data.
type CreatePromptRequest struct {
	Content string   `json:"content" validate:"required,max=10000"`
	TagIDs  []string `json:"tag_ids" validate:"omitempty,dive,required"`
}

// UpdatePromptRequest contains replacement prompt data. The tag set is
// replaced wholesale; omitting a previously linked tag unlinks it.
type UpdatePromptRequest struct {
	Content string   `json:"content" validate:"required,max=10000"`
	TagIDs  []string `json:"tag_ids" validate:"omitempty,dive,required"`
}

// PromptDetail is a prompt with its tags and resolved image set.
type PromptDetail struct {
	Prompt   *domain.Prompt `json:"prompt"`
	Tags     []*domain.Tag  `json:"tags"`
	Images   []*PromptImage `json:"images"`
	ImageURL string         `json:"image_url,omitempty"`
}

// PromptImage is an image attachment with its storage reference
// resolved to a servable URL.
type PromptImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	BlurHash  string    `json:"blur_hash,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePrompt creates a prompt and links its tags.
func (s *PromptService) CreatePrompt(ctx context.Context, sess *Session, req CreatePromptRequest) (*PromptDetail, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.verifyTagOwnership(ctx, sess.UserID, req.TagIDs); err != nil {
		return nil, err
	}

	promptID, err := id.Generate("prompt")
	if err != nil {
		return nil, fmt.Errorf("generate prompt ID: %w", err)
	}

	now := time.Now().UTC()
	prompt := &domain.Prompt{
		ID:        promptID,
		OwnerID:   sess.UserID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreatePrompt(ctx, prompt); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	if len(req.TagIDs) > 0 {
		if err := s.store.SetPromptTags(ctx, sess.UserID, promptID, req.TagIDs); err != nil {
			return nil, fmt.Errorf("link tags: %w", err)
		}
	}

	s.indexPrompt(prompt)
	s.cache.InvalidateOwner(sess.UserID)

	s.logger.Info("prompt created", "prompt_id", promptID, "user_id", sess.UserID, "tags", len(req.TagIDs))

	return s.buildDetail(ctx, sess, prompt)
}

// GetPrompt returns one prompt with tags and resolved image URLs.
func (s *PromptService) GetPrompt(ctx context.Context, sess *Session, promptID string) (*PromptDetail, error) {
	prompt, err := s.store.GetPrompt(ctx, sess.UserID, promptID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, err
	}
	return s.buildDetail(ctx, sess, prompt)
}

// UpdatePrompt replaces a prompt's content and tag set.
func (s *PromptService) UpdatePrompt(ctx context.Context, sess *Session, promptID string, req UpdatePromptRequest) (*PromptDetail, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	prompt, err := s.store.GetPrompt(ctx, sess.UserID, promptID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, err
	}

	if err := s.verifyTagOwnership(ctx, sess.UserID, req.TagIDs); err != nil {
		return nil, err
	}

	prompt.Content = req.Content
	prompt.Touch()

	if err := s.store.UpdatePrompt(ctx, prompt); err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}

	// Wholesale replace: the request's tag set becomes the prompt's tag set.
	if err := s.store.SetPromptTags(ctx, sess.UserID, promptID, req.TagIDs); err != nil {
		return nil, fmt.Errorf("replace tags: %w", err)
	}

	s.indexPrompt(prompt)
	s.cache.InvalidateOwner(sess.UserID)

	s.logger.Info("prompt updated", "prompt_id", promptID, "user_id", sess.UserID)

	return s.buildDetail(ctx, sess, prompt)
}

// DeletePrompt removes a prompt, its tag links, its image rows, and the
// stored image objects. Row deletion happens first; if an object
// removal then fails the rows stay deleted and the caller gets a
// partial-apply error naming the leftovers, which the cleanup job
// reconciles later.
func (s *PromptService) DeletePrompt(ctx context.Context, sess *Session, promptID string) error {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionPrompt)) {
		return domainerrors.ErrCooldown
	}

	if _, err := s.store.GetPrompt(ctx, sess.UserID, promptID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("prompt not found")
		}
		return err
	}

	imgs, err := s.store.ListPromptImages(ctx, promptID)
	if err != nil {
		return fmt.Errorf("list prompt images: %w", err)
	}

	// Deletes the row plus tag links and image rows via cascade.
	if err := s.store.DeletePrompt(ctx, sess.UserID, promptID); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}

	var failed int
	for _, img := range imgs {
		if err := s.objects.Remove(ctx, img.StoragePath); err != nil {
			failed++
			s.logger.Warn("failed to remove image object",
				"prompt_id", promptID,
				"path", img.StoragePath,
				"error", err,
			)
		}
	}

	if err := s.search.DeletePrompt(promptID); err != nil {
		s.logger.Warn("failed to remove prompt from search index", "prompt_id", promptID, "error", err)
	}

	s.cache.InvalidateOwner(sess.UserID)

	s.logger.Info("prompt deleted", "prompt_id", promptID, "user_id", sess.UserID, "images", len(imgs))

	if failed > 0 {
		return domainerrors.PartialApply(fmt.Sprintf("prompt deleted but %d image objects could not be removed", failed))
	}
	return nil
}

// AddImage validates, compresses, and stores an uploaded image, then
// attaches it to the prompt. The first image also becomes the prompt's
// primary image reference.
func (s *PromptService) AddImage(ctx context.Context, sess *Session, promptID, fileName, mimeType string, data []byte) (*PromptImage, error) {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionImage)) {
		return nil, domainerrors.ErrCooldown
	}

	if err := images.Validate(mimeType, int64(len(data))); err != nil {
		return nil, err
	}

	prompt, err := s.store.GetPrompt(ctx, sess.UserID, promptID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, err
	}

	encoded, err := images.Compress(bytes.NewReader(data), images.MaxDimension, images.Quality)
	if err != nil {
		return nil, err
	}

	blurHash := s.computeBlurHash(encoded.Data, promptID)

	key := images.ObjectKey(sess.UserID, fileName, time.Now())
	if err := s.objects.Upload(ctx, key, encoded.Data); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	imageID, err := id.Generate("img")
	if err != nil {
		return nil, fmt.Errorf("generate image ID: %w", err)
	}

	img := &domain.PromptImage{
		ID:          imageID,
		PromptID:    promptID,
		OwnerID:     sess.UserID,
		StoragePath: key,
		BlurHash:    blurHash,
		Width:       encoded.Width,
		Height:      encoded.Height,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreatePromptImage(ctx, img); err != nil {
		// Row failed after the object landed; remove the orphan.
		if rmErr := s.objects.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("failed to remove orphaned image object", "path", key, "error", rmErr)
		}
		return nil, fmt.Errorf("save image record: %w", err)
	}

	if prompt.ImagePath == "" {
		prompt.ImagePath = key
		prompt.Touch()
		if err := s.store.UpdatePrompt(ctx, prompt); err != nil {
			s.logger.Warn("failed to set primary image", "prompt_id", promptID, "error", err)
		}
	}

	s.cache.InvalidateOwner(sess.UserID)

	s.logger.Info("image attached",
		"prompt_id", promptID,
		"image_id", imageID,
		"size", len(encoded.Data),
		"dimensions", fmt.Sprintf("%dx%d", encoded.Width, encoded.Height),
	)

	return s.presentImage(img), nil
}

// RemoveImage detaches an image from a prompt and removes its stored
// object. If the removed image was the primary, the oldest remaining
// image is promoted.
func (s *PromptService) RemoveImage(ctx context.Context, sess *Session, promptID, imageID string) error {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionImage)) {
		return domainerrors.ErrCooldown
	}

	img, err := s.store.GetPromptImage(ctx, sess.UserID, imageID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("image not found")
		}
		return err
	}
	if img.PromptID != promptID {
		return domainerrors.NotFound("image not found")
	}

	if err := s.store.DeletePromptImage(ctx, sess.UserID, imageID); err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}

	if err := s.objects.Remove(ctx, img.StoragePath); err != nil {
		s.logger.Warn("failed to remove image object", "path", img.StoragePath, "error", err)
	}

	prompt, err := s.store.GetPrompt(ctx, sess.UserID, promptID)
	if err == nil && prompt.ImagePath == img.StoragePath {
		prompt.ImagePath = ""
		if remaining, listErr := s.store.ListPromptImages(ctx, promptID); listErr == nil && len(remaining) > 0 {
			prompt.ImagePath = remaining[0].StoragePath
		}
		prompt.Touch()
		if err := s.store.UpdatePrompt(ctx, prompt); err != nil {
			s.logger.Warn("failed to update primary image", "prompt_id", promptID, "error", err)
		}
	}

	s.cache.InvalidateOwner(sess.UserID)

	s.logger.Info("image removed", "prompt_id", promptID, "image_id", imageID, "user_id", sess.UserID)
	return nil
}

// verifyTagOwnership confirms every tag ID belongs to the caller.
func (s *PromptService) verifyTagOwnership(ctx context.Context, ownerID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := s.store.GetTag(ctx, ownerID, tagID); err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return domainerrors.Validationf("unknown tag %q", tagID)
			}
			return err
		}
	}
	return nil
}

// buildDetail assembles a prompt with its tags and resolved image URLs.
func (s *PromptService) buildDetail(ctx context.Context, sess *Session, prompt *domain.Prompt) (*PromptDetail, error) {
	tagIDs, err := s.store.GetPromptTagIDs(ctx, prompt.ID)
	if err != nil {
		return nil, fmt.Errorf("get prompt tags: %w", err)
	}

	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.store.GetTag(ctx, sess.UserID, tagID)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	imgs, err := s.store.ListPromptImages(ctx, prompt.ID)
	if err != nil {
		return nil, fmt.Errorf("list prompt images: %w", err)
	}

	presented := make([]*PromptImage, 0, len(imgs))
	for _, img := range imgs {
		presented = append(presented, s.presentImage(img))
	}

	return &PromptDetail{
		Prompt:   prompt,
		Tags:     tags,
		Images:   presented,
		ImageURL: s.resolver.Resolve(prompt.ImagePath),
	}, nil
}

// presentImage converts a stored image row to its client shape, with
// the storage path resolved to a signed URL.
func (s *PromptService) presentImage(img *domain.PromptImage) *PromptImage {
	ref := img.StoragePath
	if ref == "" {
		ref = img.ImageURL
	}
	return &PromptImage{
		ID:        img.ID,
		URL:       s.resolver.Resolve(ref),
		BlurHash:  img.BlurHash,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: img.CreatedAt,
	}
}

// computeBlurHash derives a placeholder hash from the compressed JPEG.
// Failures degrade to an empty hash rather than failing the upload.
func (s *PromptService) computeBlurHash(jpegData []byte, promptID string) string {
	img, _, err := image.Decode(bytes.NewReader(jpegData))
	if err != nil {
		s.logger.Warn("failed to decode image for blur hash", "prompt_id", promptID, "error", err)
		return ""
	}
	hash, err := images.ComputeBlurHash(img)
	if err != nil {
		s.logger.Warn("failed to compute blur hash", "prompt_id", promptID, "error", err)
		return ""
	}
	return hash
}

// indexPrompt adds or updates the prompt in the search index, best
// effort.
func (s *PromptService) indexPrompt(p *domain.Prompt) {
	if err := s.search.IndexPrompt(p); err != nil {
		s.logger.Warn("failed to index prompt", "prompt_id", p.ID, "error", err)
	}
}
