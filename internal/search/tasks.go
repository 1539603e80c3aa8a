package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/ShubhamRajbabu/taskvault/internal/models"
)

const DefaultTaskIndex = "tasks"

// TaskIndex mirrors the tasks table into Elasticsearch. A nil *TaskIndex
// skips indexing, so the service runs without a cluster.
type TaskIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	if es == nil {
		return nil
	}
	if index == "" {
		index = DefaultTaskIndex
	}
	return &TaskIndex{ES: es, Index: index}
}

func (t *TaskIndex) Enabled() bool { return t != nil }

func (t *TaskIndex) IndexTask(ctx context.Context, task *models.Task) error {
	if t == nil {
		return nil
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("search: marshal task: %w", err)
	}
	res, err := t.ES.Index(
		t.Index,
		bytes.NewReader(data),
		t.ES.Index.WithContext(ctx),
		t.ES.Index.WithDocumentID(strconv.FormatUint(uint64(task.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index task: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index task: %s", res.Status())
	}
	return nil
}

func (t *TaskIndex) RemoveTask(ctx context.Context, taskID uint) error {
	if t == nil {
		return nil
	}
	res, err := t.ES.Delete(
		t.Index,
		strconv.FormatUint(uint64(taskID), 10),
		t.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: remove task: %w", err)
	}
	defer res.Body.Close()
	return nil
}

// SearchTasks runs a fuzzy multi_match over title/description, filtered to
// the owning user.
func (t *TaskIndex) SearchTasks(ctx context.Context, userID uint, query string, from, size int) (int64, []models.Task, error) {
	if t == nil {
		return 0, nil, fmt.Errorf("search: not configured")
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"title^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := t.ES.Search(
		t.ES.Search.WithContext(ctx),
		t.ES.Search.WithIndex(t.Index),
		t.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: query: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Task `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	items := make([]models.Task, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}

// Calculate clamps pagination input into an offset/limit pair.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size
}
