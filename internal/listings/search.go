package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchIndex is the full-text index over listings. The SQL repository
// remains the source of truth; the index only resolves IDs.
type SearchIndex interface {
	IndexListing(ctx context.Context, listing *Listing) error
	RemoveListing(ctx context.Context, listingID uuid.UUID) error
	Search(ctx context.Context, filter BrowseFilter) ([]uuid.UUID, int, error)
}

type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

func NewElasticIndex(client *elasticsearch.Client, index string, logger *zap.Logger) *ElasticIndex {
	return &ElasticIndex{client: client, index: index, logger: logger}
}

type listingDocument struct {
	ContractorID string  `json:"contractor_id"`
	CategoryID   string  `json:"category_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ServiceArea  string  `json:"service_area"`
	RatingValue  float64 `json:"rating_value"`
	VerifiedPro  bool    `json:"verified_pro"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
}

func (e *ElasticIndex) IndexListing(ctx context.Context, listing *Listing) error {
	doc := listingDocument{
		ContractorID: listing.ContractorID.String(),
		CategoryID:   listing.CategoryID,
		Title:        listing.Title,
		Description:  listing.Description,
		ServiceArea:  listing.ServiceArea,
		RatingValue:  listing.RatingValue,
		VerifiedPro:  listing.VerifiedPro,
		Active:       listing.Active,
		CreatedAt:    listing.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal listing document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: listing.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("failed to index listing: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index listing: %s", res.String())
	}
	return nil
}

func (e *ElasticIndex) RemoveListing(ctx context.Context, listingID uuid.UUID) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: listingID.String()}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("failed to remove listing from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to remove listing from index: %s", res.String())
	}
	return nil
}

// Search resolves matching listing IDs in relevance order
func (e *ElasticIndex) Search(ctx context.Context, filter BrowseFilter) ([]uuid.UUID, int, error) {
	filter.Normalize()

	queryBody := buildSearchQuery(filter)
	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	from := (filter.Page - 1) * filter.PageSize
	size := filter.PageSize
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search request failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			e.logger.Warn("Skipping search hit with malformed ID", zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, parsed.Hits.Total.Value, nil
}

func buildSearchQuery(filter BrowseFilter) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"active": true}},
	}

	if filter.Query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filter.Query,
				"fields": []string{"title^3", "description^2", "service_area"},
				"type":   "best_fields",
			},
		})
	} else {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match_all": map[string]interface{}{},
		})
	}

	if filter.CategoryID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category_id": filter.CategoryID},
		})
	}
	if filter.MinRating > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"rating_value": map[string]interface{}{"gte": filter.MinRating},
			},
		})
	}
	if filter.VerifiedOnly {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"verified_pro": true},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}

	switch filter.SortBy {
	case "rating":
		query["sort"] = []map[string]interface{}{{"rating_value": "desc"}}
	case "newest":
		query["sort"] = []map[string]interface{}{{"created_at": "desc"}}
	}

	return query
}
