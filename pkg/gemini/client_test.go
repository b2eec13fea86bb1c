package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	lastModel string
	lastCfg   *genai.GenerateContentConfig
	resp      *genai.GenerateContentResponse
	err       error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerateAppliesResponseConfig(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`["a"]`)}
	client := &Client{models: fake}

	result, err := client.Generate(context.Background(), GenerateParams{
		Model:        "gemini-2.0-flash",
		Prompt:       "suggest",
		JSONResponse: true,
		GoogleSearch: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != `["a"]` {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if fake.lastCfg.ResponseMIMEType != "application/json" {
		t.Fatalf("json response mode not requested")
	}
	if len(fake.lastCfg.Tools) != 1 || fake.lastCfg.Tools[0].GoogleSearch == nil {
		t.Fatalf("google search tool not attached")
	}
	if len(result.Citations) != 0 {
		t.Fatalf("expected empty citations default, got %v", result.Citations)
	}
}

func TestGenerateCollectsCitationsAndImage(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "caption"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 0x50}}},
			}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://example.com", Title: "Example"}},
					{Web: nil},
				},
			},
		}},
	}}
	client := &Client{models: fake}

	result, err := client.Generate(context.Background(), GenerateParams{Model: "m", Prompt: "p", ImageOutput: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ImageMIME != "image/png" || len(result.ImageData) != 2 {
		t.Fatalf("image payload lost: %+v", result)
	}
	if len(result.Citations) != 1 || result.Citations[0].URI != "https://example.com" {
		t.Fatalf("unexpected citations %v", result.Citations)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	client := &Client{models: &fakeModels{}}
	if _, err := client.Generate(context.Background(), GenerateParams{Model: "m"}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestClassifyRateLimit(t *testing.T) {
	err := Classify(genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"})
	if err.Kind() != KindRateLimited {
		t.Fatalf("expected rate limited, got %s", err.Kind())
	}

	err = Classify(fmt.Errorf("rpc error: RESOURCE_EXHAUSTED details"))
	if err.Kind() != KindRateLimited {
		t.Fatalf("expected substring match to classify rate limited, got %s", err.Kind())
	}
}

func TestClassifyGeneric(t *testing.T) {
	err := Classify(errors.New("connection reset"))
	if err.Kind() != KindGeneric {
		t.Fatalf("expected generic, got %s", err.Kind())
	}
	if !errors.Is(err, err.Unwrap()) && err.Unwrap() == nil {
		t.Fatalf("cause not preserved")
	}
}

func TestIsRateLimitedThroughWrapping(t *testing.T) {
	inner := NewError(KindRateLimited, "model quota exhausted", nil)
	wrapped := fmt.Errorf("suggest names: %w", inner)
	if !IsRateLimited(wrapped) {
		t.Fatal("expected rate limit detected through chain")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Fatal("plain error misclassified")
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	client := &Client{models: &fakeModels{resp: &genai.GenerateContentResponse{}}}
	_, err := client.Generate(context.Background(), GenerateParams{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for empty response")
	}
	if IsRateLimited(err) {
		t.Fatal("empty response should be generic")
	}
}
