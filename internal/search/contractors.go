// internal/search/contractors.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "tender-matching/internal/common/errors"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/models"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// contractorMapping keeps capabilities searchable as text with an exact keyword subfield.
var contractorMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "keyword"},
			"name":        map[string]interface{}{"type": "text"},
			"type":        map[string]interface{}{"type": "keyword"},
			"description": map[string]interface{}{"type": "text"},
			"capabilities": map[string]interface{}{
				"type":   "text",
				"fields": map[string]interface{}{"raw": map[string]interface{}{"type": "keyword"}},
			},
			"available": map[string]interface{}{"type": "boolean"},
			"location":  map[string]interface{}{"type": "geo_point"},
		},
	},
}

// ContractorIndex is the full-text directory of contractor organizations.
type ContractorIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewContractorIndex(client *elasticsearch.Client, index string, log logger.Logger) *ContractorIndex {
	return &ContractorIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "contractor-index", "index": index}),
	}
}

// contractorDoc is the indexed form of an organization.
type contractorDoc struct {
	models.Organization
	Location *geoPoint `json:"location,omitempty"`
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toDoc(o models.Organization) contractorDoc {
	doc := contractorDoc{Organization: o}
	if o.Latitude != nil && o.Longitude != nil {
		doc.Location = &geoPoint{Lat: *o.Latitude, Lon: *o.Longitude}
	}
	return doc
}

// BuildSearchQuery matches q against name and capabilities. An empty q lists
// every contractor.
func BuildSearchQuery(q string) map[string]interface{} {
	must := []interface{}{}
	if q = strings.TrimSpace(q); q != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q,
				"fields":    []string{"name^3", "capabilities^2", "description"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": must,
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"type": string(models.OrganizationContractor)}},
				},
			},
		},
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Organization `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns contractors whose name or capabilities match q, best match first.
func (c *ContractorIndex) Search(ctx context.Context, q string, limit int) ([]models.Organization, error) {
	body, err := json.Marshal(BuildSearchQuery(q))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	size := clampLimit(limit)
	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(c.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError("contractor_search", fmt.Errorf("%s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("contractor_search", err)
	}

	out := make([]models.Organization, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source)
	}

	c.logger.Debug("Contractor search", map[string]interface{}{
		"query": q,
		"hits":  len(out),
	})
	return out, nil
}

// EnsureIndex creates the index with the contractor mapping when it does not exist.
func (c *ContractorIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{c.index}}.Do(ctx, c.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping, err := json.Marshal(contractorMapping)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	res, err = esapi.IndicesCreateRequest{Index: c.index, Body: bytes.NewReader(mapping)}.Do(ctx, c.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError("create_index", fmt.Errorf("%s", res.String()))
	}

	c.logger.Info("Created contractor index", nil)
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	} `json:"items"`
}

// IndexAll upserts orgs in a single bulk request and returns how many were indexed.
func (c *ContractorIndex) IndexAll(ctx context.Context, orgs []models.Organization) (int, error) {
	if len(orgs) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range orgs {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": c.index, "_id": o.ID},
		}
		if err := enc.Encode(meta); err != nil {
			return 0, apperrors.NewInternalError(err)
		}
		if err := enc.Encode(toDoc(o)); err != nil {
			return 0, apperrors.NewInternalError(err)
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, c.client)
	if err != nil {
		return 0, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, apperrors.NewSearchQueryFailedError("bulk_index", fmt.Errorf("%s", res.String()))
	}

	var r bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, apperrors.NewSearchQueryFailedError("bulk_index", err)
	}

	indexed := 0
	for _, item := range r.Items {
		for _, result := range item {
			if result.Status >= 200 && result.Status < 300 {
				indexed++
				continue
			}
			c.logger.Warn("Failed to index contractor", map[string]interface{}{
				"id":     result.ID,
				"status": result.Status,
				"error":  string(result.Error),
			})
		}
	}

	c.logger.Info("Bulk indexed contractors", map[string]interface{}{
		"submitted": len(orgs),
		"indexed":   indexed,
	})
	return indexed, nil
}
