package ai

import (
	"context"
	"net/http"

	"github.com/luisocampo/nichesmith-backend/api/responses"
	"github.com/luisocampo/nichesmith-backend/api/validators"
	aisvc "github.com/luisocampo/nichesmith-backend/internal/ai"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

// Service is the generation pipeline consumed by these handlers.
type Service interface {
	GenerateImage(ctx context.Context, prompt, title string) (*aisvc.GeneratedImage, error)
	SuggestNames(ctx context.Context, niche string) ([]string, error)
	SuggestKeywords(ctx context.Context, topic string) (*aisvc.KeywordSuggestions, error)
	GenerateArticle(ctx context.Context, keyword, niche string) (*aisvc.Article, error)
}

const maxPromptLen = 2000

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title"`
}

type suggestNamesRequest struct {
	Niche string `json:"niche" validate:"required"`
}

type suggestKeywordsRequest struct {
	Topic string `json:"topic" validate:"required"`
}

type generateArticleRequest struct {
	Keyword string `json:"keyword" validate:"required"`
	Niche   string `json:"niche" validate:"required"`
}

func GenerateImage(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req generateImageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		image, err := svc.GenerateImage(ctx,
			validators.SanitizeString(req.Prompt, maxPromptLen),
			validators.SanitizeString(req.Title, maxPromptLen))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, image)
	}
}

func SuggestNames(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req suggestNamesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		names, err := svc.SuggestNames(ctx, validators.SanitizeString(req.Niche, maxPromptLen))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"names": names})
	}
}

func SuggestKeywords(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req suggestKeywordsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		suggestions, err := svc.SuggestKeywords(ctx, validators.SanitizeString(req.Topic, maxPromptLen))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}

func GenerateArticle(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req generateArticleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		article, err := svc.GenerateArticle(ctx,
			validators.SanitizeString(req.Keyword, maxPromptLen),
			validators.SanitizeString(req.Niche, maxPromptLen))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}
