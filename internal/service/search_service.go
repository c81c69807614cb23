package service

import (
	"encoding/json"
	"html"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
)

// SearchService maintains the challenge discovery index. Indexing is best
// effort: the relational store stays the source of truth and a failed index
// write never fails the originating operation.
type SearchService interface {
	IndexChallenge(challenge *model.Challenge, circleName string) error
	DeleteChallenge(id string) error
	SearchChallenges(query string, limit int) ([]dto.ChallengeDoc, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"circle_id"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index("challenges").UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update challenges filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "points"}
	if _, err := s.client.Index("challenges").UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update challenges sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexChallenge(challenge *model.Challenge, circleName string) error {
	doc := dto.ChallengeDoc{
		ID:         challenge.ID.String(),
		Title:      challenge.Title,
		Summary:    s.cleanContentForIndex(challenge.Description),
		Points:     challenge.Points,
		CircleID:   challenge.CircleID.String(),
		CircleName: circleName,
		CreatedAt:  challenge.CreatedAt.Unix(),
	}

	task, err := s.client.Index("challenges").AddDocuments([]dto.ChallengeDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed challenge %s, task id: %d", challenge.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteChallenge(id string) error {
	_, err := s.client.Index("challenges").DeleteDocument(id)
	return err
}

func (s *searchService) SearchChallenges(query string, limit int) ([]dto.ChallengeDoc, error) {
	resp, err := s.client.Index("challenges").Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	docs := make([]dto.ChallengeDoc, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc dto.ChallengeDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func strPtr(s string) *string {
	return &s
}
