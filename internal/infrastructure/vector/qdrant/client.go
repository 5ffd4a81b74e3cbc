package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

const (
	DefaultCollection = "legal_mvp"
	DefaultVectorSize = 1536
	serviceName       = "qdrant"
)

type Options struct {
	APIKey             string
	VectorSize         int
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

// Client talks to the Qdrant REST API. One instance is shared by the indexer
// and the retriever.
type Client struct {
	baseURL    string
	collection string
	apiKey     string
	vectorSize int
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, collection string, opts Options) *Client {
	if collection == "" {
		collection = DefaultCollection
	}
	if opts.VectorSize <= 0 {
		opts.VectorSize = DefaultVectorSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		apiKey:     opts.APIKey,
		vectorSize: opts.VectorSize,
		httpClient: &http.Client{Timeout: opts.Timeout},
		executor:   opts.ResilienceExecutor,
	}
}

// EnsureCollection creates the collection with Cosine distance when it does
// not exist and rejects an existing collection with a different vector size.
func (c *Client) EnsureCollection(ctx context.Context) error {
	return resilience.Run(ctx, c.executor, "qdrant.ensure_collection", c.ensureCollection, nil)
}

func (c *Client) ensureCollection(ctx context.Context) error {
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := c.do(ctx, http.MethodGet, c.collectionPath(), nil, &info, "get collection", http.StatusNotFound)
	if err != nil {
		return err
	}
	if status != http.StatusNotFound {
		if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != c.vectorSize {
			return domain.WrapError(
				domain.ErrInvalidInput,
				"qdrant ensure collection",
				fmt.Errorf("collection %s has vector size %d, expected %d", c.collection, size, c.vectorSize),
			)
		}
		return nil
	}

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}
	// 409 means a concurrent creator won the race.
	_, err = c.do(ctx, http.MethodPut, c.collectionPath(), reqBody, nil, "create collection", http.StatusConflict)
	return err
}

func (c *Client) Upsert(ctx context.Context, points []domain.IndexedPoint) error {
	if len(points) == 0 {
		return nil
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	body := make([]point, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != c.vectorSize {
			return domain.WrapError(
				domain.ErrInvalidInput,
				"qdrant upsert",
				fmt.Errorf("point %s has vector size %d, expected %d", p.ID, len(p.Vector), c.vectorSize),
			)
		}
		body = append(body, point{ID: p.ID, Vector: p.Vector, Payload: p.Payload()})
	}

	return resilience.Run(ctx, c.executor, "qdrant.upsert", func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPut, c.collectionPath()+"/points?wait=true", map[string]any{"points": body}, nil, "upsert")
		return err
	}, nil)
}

func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	limit int,
	filter *domain.SearchFilter,
) ([]domain.RetrievedPoint, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil && filter.Corpus != "" {
		reqBody["filter"] = corpusFilter(filter.Corpus)
	}

	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := resilience.Run(ctx, c.executor, "qdrant.search", func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, c.collectionPath()+"/points/search", reqBody, &searchResp, "search")
		return err
	}, nil)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedPoint, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedPoint{
			ID:      pointID(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return out, nil
}

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func corpusFilter(corpus domain.Corpus) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{
				"key": "corpus",
				"match": map[string]any{
					"value": string(corpus),
				},
			},
		},
	}
}

func (c *Client) collectionPath() string {
	return "/collections/" + c.collection
}

// do sends a JSON request and decodes a JSON response into out. Statuses in
// accept are returned without error and without decoding.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any, operation string, accept ...int) (int, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal %s body: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	for _, code := range accept {
		if resp.StatusCode == code {
			return resp.StatusCode, nil
		}
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, resilience.NewHTTPStatusError(serviceName, operation, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return resp.StatusCode, nil
}

func pointID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
