package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"vitaminderAPI/internal/catalog"
)

type RecommendationService struct {
	db           *pgxpool.Pool
	catalog      *CatalogService
	geminiClient *genai.Client
}

// NewRecommendationService wires the local matcher and, when an API key is
// configured, the Gemini fallback. An empty key disables the fallback only.
func NewRecommendationService(db *pgxpool.Pool, catalogService *CatalogService, geminiAPIKey string) *RecommendationService {
	s := &RecommendationService{
		db:      db,
		catalog: catalogService,
	}

	if geminiAPIKey != "" {
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiAPIKey))
		if err != nil {
			log.Printf("RecommendationService: Gemini client unavailable: %v", err)
		} else {
			s.geminiClient = client
		}
	}

	return s
}

// Recommend matches the user's objective against the catalog. Local keyword
// matching runs first; when it finds nothing, the Gemini fallback proposes
// names that are then mapped back onto catalog entries. Any fallback failure
// degrades to the local (possibly empty) result.
func (s *RecommendationService) Recommend(ctx context.Context, objective string, limit int) ([]*catalog.Recommended, error) {
	entries, err := s.catalog.GetCatalog(ctx, "", "")
	if err != nil {
		return nil, err
	}

	local := matchByKeywords(entries, objective, limit)
	if len(local) > 0 {
		return local, nil
	}

	if s.geminiClient == nil {
		return []*catalog.Recommended{}, nil
	}

	names, err := s.askGemini(ctx, objective, entries)
	if err != nil {
		log.Printf("Recommend: Gemini fallback failed: %v", err)
		return []*catalog.Recommended{}, nil
	}

	recommended := mapNamesToCatalog(entries, names, objective, limit)
	return recommended, nil
}

// matchByKeywords scores entries by how many words of the objective appear in
// their name, description, or objectives list.
func matchByKeywords(entries []*catalog.Supplement, objective string, limit int) []*catalog.Recommended {
	words := strings.Fields(strings.ToLower(objective))
	if len(words) == 0 {
		return nil
	}

	var matched []*catalog.Recommended
	for _, e := range entries {
		haystack := strings.ToLower(e.Name + " " + e.Description + " " + strings.Join(e.Objectives, " "))
		hits := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matched = append(matched, &catalog.Recommended{
			Supplement: *e,
			Reason:     fmt.Sprintf("matches your goal %q", objective),
		})
	}

	// Entries are already catalog-ordered by base score; keep that order.
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (s *RecommendationService) askGemini(ctx context.Context, objective string, entries []*catalog.Supplement) ([]string, error) {
	model := s.geminiClient.GenerativeModel("gemini-1.5-flash")

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}

	prompt := fmt.Sprintf(`You are a supplement advisor. A user wants help with the goal: %q.

Available supplements (pick ONLY from this list):
%s

REQUIREMENTS:
- Return up to 3 supplement names from the list, one per line
- Return names EXACTLY as written in the list
- Do not include any other text, numbering, or explanations
- If nothing fits, return an empty response`, objective, strings.Join(names, "\n"))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected model response part")
	}

	var picked []string
	for _, line := range strings.Split(string(text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			picked = append(picked, line)
		}
	}

	return picked, nil
}

// mapNamesToCatalog resolves model-proposed names back onto real catalog
// entries, dropping anything it cannot match.
func mapNamesToCatalog(entries []*catalog.Supplement, names []string, objective string, limit int) []*catalog.Recommended {
	byName := make(map[string]*catalog.Supplement, len(entries))
	for _, e := range entries {
		byName[strings.ToLower(e.Name)] = e
	}

	recommended := []*catalog.Recommended{}
	seen := make(map[string]bool)
	for _, name := range names {
		key := strings.ToLower(name)
		e, ok := byName[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		recommended = append(recommended, &catalog.Recommended{
			Supplement: *e,
			Reason:     fmt.Sprintf("suggested for your goal %q", objective),
		})
		if limit > 0 && len(recommended) == limit {
			break
		}
	}

	return recommended
}
