// Package imagegen talks to the Gemini image models.
package imagegen

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultEditModel  = "gemini-2.5-flash-image-preview"
)

var ErrNoImage = errors.New("no image data returned")

// Client generates and edits images through the Gemini API.
type Client struct {
	client     *genai.Client
	imageModel string
	editModel  string
}

// Option configures a Client.
type Option func(*Client)

// WithImageModel sets the model used for text-to-image generation.
func WithImageModel(model string) Option {
	return func(c *Client) { c.imageModel = model }
}

// WithEditModel sets the model used for image edits.
func WithEditModel(model string) Option {
	return func(c *Client) { c.editModel = model }
}

// New creates a Gemini client for the given API key.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not provided")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c := &Client{client: gc, imageModel: DefaultImageModel, editModel: DefaultEditModel}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate returns PNG bytes for a prompt.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	return firstGeneratedImage(resp)
}

// Edit applies prompt to src and returns any text the model produced along with the new image.
func (c *Client) Edit(ctx context.Context, prompt string, src Image) (string, []byte, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(src.Data, src.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.editModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return "", nil, fmt.Errorf("generate content: %w", err)
	}
	return textAndImage(resp)
}

func firstGeneratedImage(resp *genai.GenerateImagesResponse) ([]byte, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	img := resp.GeneratedImages[0]
	if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}
	return img.Image.ImageBytes, nil
}

// textAndImage keeps the last text part and the last inline image of the first candidate.
func textAndImage(resp *genai.GenerateContentResponse) (string, []byte, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, ErrNoImage
	}
	var text string
	var image []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text = part.Text
		} else if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			image = part.InlineData.Data
		}
	}
	if len(image) == 0 {
		return text, nil, ErrNoImage
	}
	return text, image, nil
}
