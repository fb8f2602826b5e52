package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvault/promptvault-server/internal/service"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts",
		Summary:     "Create prompt",
		Description: "Creates a new prompt with an optional tag set",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Get prompt",
		Description: "Returns a prompt with its tags and images",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePrompt",
		Method:      http.MethodPatch,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Update prompt",
		Description: "Replaces prompt content and tag set",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePrompt",
		Method:      http.MethodDelete,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Delete prompt",
		Description: "Deletes a prompt, its tag links, and its stored images",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadPromptImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{id}/images",
		Summary:     "Upload prompt image",
		Description: "Attaches an image to a prompt; the raw body is the image data",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadPromptImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePromptImage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/prompts/{id}/images/{imageID}",
		Summary:     "Delete prompt image",
		Description: "Removes one image from a prompt",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePromptImage)
}

// === DTOs ===

// PromptBody is the request body for creating or updating a prompt.
type PromptBody struct {
	Content string   `json:"content" doc:"Prompt text"`
	TagIDs  []string `json:"tag_ids,omitempty" doc:"Tag IDs to link"`
}

// CreatePromptInput wraps the create request for Huma.
type CreatePromptInput struct {
	Body PromptBody
}

// PromptIDInput carries a prompt ID path parameter.
type PromptIDInput struct {
	ID string `path:"id" doc:"Prompt ID"`
}

// UpdatePromptInput wraps the update request for Huma.
type UpdatePromptInput struct {
	ID   string `path:"id" doc:"Prompt ID"`
	Body PromptBody
}

// UploadImageInput carries a raw image upload.
type UploadImageInput struct {
	ID          string `path:"id" doc:"Prompt ID"`
	ContentType string `header:"Content-Type"`
	FileName    string `header:"X-File-Name"`
	RawBody     []byte
}

// DeleteImageInput identifies one image on one prompt.
type DeleteImageInput struct {
	ID      string `path:"id" doc:"Prompt ID"`
	ImageID string `path:"imageID" doc:"Image ID"`
}

// ImageResponse is one image attachment with a resolved URL.
type ImageResponse struct {
	ID        string    `json:"id" doc:"Image ID"`
	URL       string    `json:"url" doc:"Signed URL for the image"`
	BlurHash  string    `json:"blur_hash,omitempty" doc:"BlurHash placeholder"`
	Width     int       `json:"width,omitempty" doc:"Pixel width"`
	Height    int       `json:"height,omitempty" doc:"Pixel height"`
	CreatedAt time.Time `json:"created_at" doc:"Upload timestamp"`
}

// PromptResponse is a prompt with its tags and images.
type PromptResponse struct {
	ID        string          `json:"id" doc:"Prompt ID"`
	Content   string          `json:"content" doc:"Prompt text"`
	ImageURL  string          `json:"image_url,omitempty" doc:"Primary image URL"`
	Tags      []TagResponse   `json:"tags" doc:"Linked tags"`
	Images    []ImageResponse `json:"images" doc:"Image attachments"`
	CreatedAt time.Time       `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time       `json:"updated_at" doc:"Last update timestamp"`
}

// PromptOutput wraps a prompt response for Huma.
type PromptOutput struct {
	Body PromptResponse
}

// ImageOutput wraps an image response for Huma.
type ImageOutput struct {
	Body ImageResponse
}

// === Handlers ===

func (s *Server) handleCreatePrompt(ctx context.Context, input *CreatePromptInput) (*PromptOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Prompts.CreatePrompt(ctx, sess, service.CreatePromptRequest{
		Content: input.Body.Content,
		TagIDs:  input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: mapPromptDetail(detail)}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, input *PromptIDInput) (*PromptOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Prompts.GetPrompt(ctx, sess, input.ID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: mapPromptDetail(detail)}, nil
}

func (s *Server) handleUpdatePrompt(ctx context.Context, input *UpdatePromptInput) (*PromptOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Prompts.UpdatePrompt(ctx, sess, input.ID, service.UpdatePromptRequest{
		Content: input.Body.Content,
		TagIDs:  input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: mapPromptDetail(detail)}, nil
}

func (s *Server) handleDeletePrompt(ctx context.Context, input *PromptIDInput) (*MessageOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Prompts.DeletePrompt(ctx, sess, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Prompt deleted"}}, nil
}

func (s *Server) handleUploadPromptImage(ctx context.Context, input *UploadImageInput) (*ImageOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	img, err := s.services.Prompts.AddImage(ctx, sess, input.ID, input.FileName, input.ContentType, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ImageOutput{Body: mapPromptImage(img)}, nil
}

func (s *Server) handleDeletePromptImage(ctx context.Context, input *DeleteImageInput) (*MessageOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Prompts.RemoveImage(ctx, sess, input.ID, input.ImageID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Image deleted"}}, nil
}

// === Helpers ===

func mapPromptDetail(detail *service.PromptDetail) PromptResponse {
	tags := make([]TagResponse, 0, len(detail.Tags))
	for _, t := range detail.Tags {
		tags = append(tags, mapTag(t))
	}

	images := make([]ImageResponse, 0, len(detail.Images))
	for _, img := range detail.Images {
		images = append(images, mapPromptImage(img))
	}

	return PromptResponse{
		ID:        detail.Prompt.ID,
		Content:   detail.Prompt.Content,
		ImageURL:  detail.ImageURL,
		Tags:      tags,
		Images:    images,
		CreatedAt: detail.Prompt.CreatedAt,
		UpdatedAt: detail.Prompt.UpdatedAt,
	}
}

func mapPromptImage(img *service.PromptImage) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		BlurHash:  img.BlurHash,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: img.CreatedAt,
	}
}
