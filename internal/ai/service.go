package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/luisocampo/nichesmith-backend/pkg/config"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/gemini"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
	"github.com/luisocampo/nichesmith-backend/pkg/metrics"
)

// Variant labels used in logs and metrics.
const (
	VariantGenerateImage   = "generate_image"
	VariantSuggestNames    = "suggest_names"
	VariantSuggestKeywords = "suggest_keywords"
	VariantGenerateArticle = "generate_article"
)

type generator interface {
	Generate(ctx context.Context, params gemini.GenerateParams) (*gemini.Result, error)
}

// KeywordSuggestions pairs the keyword list with whatever grounding sources
// the model cited. Citations default to empty, never nil.
type KeywordSuggestions struct {
	Keywords  []string          `json:"keywords"`
	Citations []gemini.Citation `json:"citations"`
}

// Article is the structured article payload. Only the top-level shape is
// enforced; content quality is the caller's problem.
type Article struct {
	Title               string   `json:"title"`
	Content             string   `json:"content"`
	FeaturedImagePrompt string   `json:"featured_image_prompt"`
	InlineImagePrompts  []string `json:"inline_image_prompts"`
}

// GeneratedImage carries a single data-URI-encoded image.
type GeneratedImage struct {
	DataURI string `json:"data_uri"`
}

type ServiceParams struct {
	Gemini  generator
	Models  config.GeminiConfig
	Logger  *logger.Logger
	Metrics *metrics.AIMetrics
}

// Service is the proxy pipeline between API callers and the model provider:
// validate parameters, build the prompt, dispatch, unwrap, validate shape.
type Service struct {
	gemini  generator
	models  config.GeminiConfig
	logg    *logger.Logger
	metrics *metrics.AIMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gemini == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gemini client required")
	}
	return &Service{
		gemini:  params.Gemini,
		models:  params.Models,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// SuggestNames returns brand name candidates for a niche.
func (s *Service) SuggestNames(ctx context.Context, niche string) ([]string, error) {
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "niche is required")
	}

	prompt := fmt.Sprintf(
		"Suggest 10 short, brandable site names for a website about %q. "+
			"Respond with a JSON array of strings and nothing else.", niche)

	start := time.Now()
	result, err := s.gemini.Generate(ctx, gemini.GenerateParams{
		Model:        s.models.TextModel,
		Prompt:       prompt,
		JSONResponse: true,
	})
	if err != nil {
		return nil, s.fail(ctx, VariantSuggestNames, start, err)
	}

	names, err := parseStringArray(stripCodeFence(result.Text))
	if err != nil {
		return nil, s.fail(ctx, VariantSuggestNames, start, err)
	}
	s.succeed(VariantSuggestNames, start)
	return names, nil
}

// SuggestKeywords returns search keywords for a topic, grounded against live
// search results when the provider supplies them.
func (s *Service) SuggestKeywords(ctx context.Context, topic string) (*KeywordSuggestions, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topic is required")
	}

	prompt := fmt.Sprintf(
		"List 15 high-intent search keywords for the topic %q. "+
			"Respond with a JSON array of strings and nothing else.", topic)

	start := time.Now()
	result, err := s.gemini.Generate(ctx, gemini.GenerateParams{
		Model:        s.models.SearchModel,
		Prompt:       prompt,
		GoogleSearch: true,
	})
	if err != nil {
		return nil, s.fail(ctx, VariantSuggestKeywords, start, err)
	}

	keywords, err := parseStringArray(stripCodeFence(result.Text))
	if err != nil {
		return nil, s.fail(ctx, VariantSuggestKeywords, start, err)
	}

	citations := result.Citations
	if citations == nil {
		citations = []gemini.Citation{}
	}
	s.succeed(VariantSuggestKeywords, start)
	return &KeywordSuggestions{Keywords: keywords, Citations: citations}, nil
}

// GenerateArticle produces a full article draft for a keyword in a niche.
func (s *Service) GenerateArticle(ctx context.Context, keyword, niche string) (*Article, error) {
	keyword = strings.TrimSpace(keyword)
	niche = strings.TrimSpace(niche)
	if keyword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyword is required")
	}
	if niche == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "niche is required")
	}

	prompt := fmt.Sprintf(
		"Write an SEO article targeting the keyword %q for a website about %q. "+
			"Respond with a JSON object with keys: title, content (HTML), "+
			"featured_image_prompt, inline_image_prompts (array of strings). "+
			"Respond with JSON and nothing else.", keyword, niche)

	start := time.Now()
	result, err := s.gemini.Generate(ctx, gemini.GenerateParams{
		Model:        s.models.ArticleModel,
		Prompt:       prompt,
		JSONResponse: true,
	})
	if err != nil {
		return nil, s.fail(ctx, VariantGenerateArticle, start, err)
	}

	article, err := parseArticle(stripCodeFence(result.Text))
	if err != nil {
		return nil, s.fail(ctx, VariantGenerateArticle, start, err)
	}
	s.succeed(VariantGenerateArticle, start)
	return article, nil
}

// GenerateImage renders one image from a prompt, or from a default prompt
// synthesized from a title. A response without image bytes is a hard failure.
func (s *Service) GenerateImage(ctx context.Context, prompt, title string) (*GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	title = strings.TrimSpace(title)
	if prompt == "" && title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prompt or title is required")
	}
	if prompt == "" {
		prompt = fmt.Sprintf(
			"A clean, modern featured image for a blog article titled %q. "+
				"No text in the image.", title)
	}

	start := time.Now()
	result, err := s.gemini.Generate(ctx, gemini.GenerateParams{
		Model:       s.models.ImageModel,
		Prompt:      prompt,
		ImageOutput: true,
	})
	if err != nil {
		return nil, s.fail(ctx, VariantGenerateImage, start, err)
	}
	if len(result.ImageData) == 0 {
		return nil, s.fail(ctx, VariantGenerateImage, start, fmt.Errorf("no image data in model response"))
	}

	mime := result.ImageMIME
	if mime == "" {
		mime = "image/png"
	}
	encoded := base64.StdEncoding.EncodeToString(result.ImageData)
	s.succeed(VariantGenerateImage, start)
	return &GeneratedImage{DataURI: fmt.Sprintf("data:%s;base64,%s", mime, encoded)}, nil
}

func (s *Service) succeed(variant string, start time.Time) {
	s.metrics.ObserveDuration(variant, time.Since(start))
	s.metrics.IncSuccess(variant)
}

// fail classifies the error for the caller: rate/quota exhaustion becomes a
// retry-after signal, everything else collapses to a generic failure so
// provider internals never leak.
func (s *Service) fail(ctx context.Context, variant string, start time.Time, err error) error {
	s.metrics.ObserveDuration(variant, time.Since(start))

	if gemini.IsRateLimited(err) {
		s.metrics.IncFailure(variant, string(gemini.KindRateLimited))
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "variant", variant), "model quota exhausted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "AI service rate limited")
	}

	s.metrics.IncFailure(variant, string(gemini.KindGeneric))
	if s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "variant", variant), "AI generation failed", err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "AI service error").Public()
}
