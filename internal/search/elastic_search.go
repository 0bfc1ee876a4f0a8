package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"blogicum/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const indexName = "posts"

// Index — полнотекстовый индекс постов. Индекс хранит только текстовые поля
// и отдает наружу исключительно ID кандидатов: итоговая выборка всегда
// перечитывается из БД с публичным фильтром видимости, поэтому устаревшие
// записи индекса не раскрывают скрытые посты.
// Нулевой *Index безопасен: индексирование становится no-op.
type Index struct {
	client *elasticsearch.Client
	ctx    context.Context
}

// New подключается к Elasticsearch по адресу url и создает индекс.
// Пустой url означает отключенный индекс: возвращается nil, и поиск
// идет через БД.
func New(url string) (*Index, error) {
	if url == "" {
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	idx := &Index{client: client, ctx: context.Background()}
	if err := idx.createIndex(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) createIndex() error {
	mapping := `{
		"mappings": {
			"properties": {
				"id": {"type": "integer"},
				"title": {"type": "text"},
				"text": {"type": "text"},
				"pub_date": {"type": "date"}
			}
		}
	}`

	req := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(idx.ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// IndexPost индексирует пост (создание и обновление).
func (idx *Index) IndexPost(post *models.Post) error {
	if idx == nil {
		return nil
	}
	doc := map[string]interface{}{
		"id":       post.ID,
		"title":    post.Title,
		"text":     post.Text,
		"pub_date": post.PubDate,
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: strconv.Itoa(post.ID),
		Body:       bytes.NewReader(docJSON),
		Refresh:    "true",
	}

	res, err := req.Do(idx.ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}

// DeletePost удаляет пост из индекса.
func (idx *Index) DeletePost(postID int) error {
	if idx == nil {
		return nil
	}
	req := esapi.DeleteRequest{
		Index:      indexName,
		DocumentID: strconv.Itoa(postID),
		Refresh:    "true",
	}

	res, err := req.Do(idx.ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error deleting document: %s", res.String())
	}
	return nil
}

// SearchIDs выполняет полнотекстовый поиск и возвращает ID постов-кандидатов.
func (idx *Index) SearchIDs(query string) ([]int, error) {
	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title", "text"},
			},
		},
		"_source": []string{"id"},
		"size":    100,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := idx.client.Search(
		idx.client.Search.WithContext(idx.ctx),
		idx.client.Search.WithIndex(indexName),
		idx.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
