package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/luisocampo/nichesmith-backend/pkg/config"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

var errAPIKeyRequired = errors.New("gemini api key is required")

// GenerateParams selects the model and response shape for a single dispatch.
type GenerateParams struct {
	Model        string
	Prompt       string
	JSONResponse bool
	GoogleSearch bool
	ImageOutput  bool
}

// Citation is one grounding source returned alongside a search-grounded
// generation.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Result carries the normalized provider output. Text and image payloads are
// mutually exclusive in practice but both are surfaced so callers decide.
type Result struct {
	Text      string
	ImageData []byte
	ImageMIME string
	Citations []Citation
}

// Client adapts the Gemini SDK. All provider error classification happens
// here so callers only ever see Error values with a Kind.
type Client struct {
	models modelCaller
	cfg    config.GeminiConfig
}

type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient initializes the Gemini SDK client.
func NewClient(ctx context.Context, cfg config.GeminiConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gemini client initialized")
	}

	return &Client{models: sdk.Models, cfg: cfg}, nil
}

// Config returns the model names the client was configured with.
func (c *Client) Config() config.GeminiConfig {
	if c == nil {
		return config.GeminiConfig{}
	}
	return c.cfg
}

// Generate dispatches one prompt and normalizes the response.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (*Result, error) {
	if c == nil || c.models == nil {
		return nil, NewError(KindGeneric, "gemini client not initialized", nil)
	}
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, NewError(KindGeneric, "prompt is required", nil)
	}

	genCfg := &genai.GenerateContentConfig{}
	if params.JSONResponse {
		genCfg.ResponseMIMEType = "application/json"
	}
	if params.GoogleSearch {
		genCfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if params.ImageOutput {
		genCfg.ResponseModalities = []string{"TEXT", "IMAGE"}
	}

	resp, err := c.models.GenerateContent(ctx, params.Model, genai.Text(params.Prompt), genCfg)
	if err != nil {
		return nil, Classify(err)
	}

	return normalizeResponse(resp)
}

func normalizeResponse(resp *genai.GenerateContentResponse) (*Result, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, NewError(KindGeneric, "empty model response", nil)
	}

	result := &Result{Citations: []Citation{}}
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				result.Text += part.Text
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.ImageData = part.InlineData.Data
				result.ImageMIME = part.InlineData.MIMEType
			}
		}
	}

	if gm := candidate.GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			result.Citations = append(result.Citations, Citation{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	return result, nil
}

// Classify converts any SDK error into a kinded Error. Quota and rate
// signals are detected here, at the provider boundary, and nowhere else.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if typed := AsError(err); typed != nil {
		return typed
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return NewError(KindRateLimited, "model quota exhausted", err)
		}
		return NewError(KindGeneric, "model request failed", err)
	}

	if strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		return NewError(KindRateLimited, "model quota exhausted", err)
	}
	return NewError(KindGeneric, "model request failed", err)
}
