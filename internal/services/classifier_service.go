package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-trend-tracker/internal/llm"
	"ai-trend-tracker/internal/models"
	"ai-trend-tracker/pkg/logger"
)

// FallbackReason is the verdict reason used when the LLM is unavailable and
// keyword matching decided the outcome.
const FallbackReason = "Keyword-based detection (LLM unavailable)"

var aiKeywords = []string{
	"ai", "ml", "machine learning", "deep learning", "neural network",
	"llm", "gpt", "transformer", "bert", "chatbot", "computer vision",
	"nlp", "natural language", "opencv", "tensorflow", "pytorch",
	"stable diffusion", "gan", "generative", "diffusion model",
	"embedding", "vector database", "rag", "agent", "langchain",
}

type ClassifierService struct {
	llm llm.Client
}

func NewClassifierService(llmClient llm.Client) *ClassifierService {
	return &ClassifierService{
		llm: llmClient,
	}
}

// Classify labels a listing as AI-related or not. It never returns an error:
// when the LLM call or response parsing fails, it degrades to keyword matching.
func (s *ClassifierService) Classify(ctx context.Context, listing models.Listing) models.Verdict {
	verdict, err := s.classifyWithLLM(ctx, listing)
	if err != nil {
		logger.WithError(err).Warnf("LLM classification failed for %s, using keyword fallback", listing.RepoName)
		return models.Verdict{
			IsAIRelated: KeywordFallback(listing.Description + " " + listing.RepoName),
			Reason:      FallbackReason,
		}
	}
	return verdict
}

// classifyWithLLM asks the model for a structured yes/no judgment.
func (s *ClassifierService) classifyWithLLM(ctx context.Context, listing models.Listing) (models.Verdict, error) {
	prompt := fmt.Sprintf(`Determine whether the following GitHub project is AI-related (machine learning, deep learning, LLM, computer vision, NLP, AI tooling, etc).

Project: %s
Description: %s
Language: %s

Respond with JSON: {"is_ai_related": true/false, "reason": "short justification"}`,
		listing.RepoName, listing.Description, listing.Language)

	messages := []llm.Message{
		{Role: "system", Content: "You are an expert at identifying AI-related open source projects."},
		{Role: "user", Content: prompt},
	}

	content, err := s.llm.ChatComplete(ctx, messages, 0.3, 200)
	if err != nil {
		return models.Verdict{}, err
	}

	var verdict models.Verdict
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &verdict); err != nil {
		return models.Verdict{}, fmt.Errorf("malformed classification response: %w", err)
	}

	return verdict, nil
}

// KeywordFallback reports whether text mentions any known AI domain keyword.
func KeywordFallback(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range aiKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// stripCodeFence removes a surrounding markdown code block, if present.
// Only the exact fence markers are trimmed, backticks inside the payload stay.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// BatchFilter classifies each listing independently and returns only the
// AI-related ones, preserving input order. One failing classification never
// aborts the rest of the batch.
func (s *ClassifierService) BatchFilter(ctx context.Context, listings []models.Listing) []models.ClassifiedListing {
	var results []models.ClassifiedListing

	for _, listing := range listings {
		verdict := s.Classify(ctx, listing)
		if verdict.IsAIRelated {
			logger.WithField("repo", listing.RepoName).Infof("AI project: %s", verdict.Reason)
			results = append(results, models.ClassifiedListing{Listing: listing, Verdict: verdict})
		}
	}

	return results
}
