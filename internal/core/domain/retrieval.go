package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Chunk is the unit of embedding and retrieval. It is immutable once created.
type Chunk struct {
	DocName    string `json:"doc_name"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	Corpus     Corpus `json:"corpus"`
	Lang       string `json:"lang_detected"`
}

func ChunkID(docName string, page, index int) string {
	return fmt.Sprintf("%s:%d:%03d", docName, page, index)
}

// IndexedPoint is what the indexer appends to the vector store.
type IndexedPoint struct {
	ID     string
	Vector []float32
	Chunk  Chunk
}

// Payload is the stored record: the chunk plus a back-reference to its
// deterministic chunk id.
func (p IndexedPoint) Payload() map[string]any {
	return map[string]any{
		"doc_name":          p.Chunk.DocName,
		"page":              p.Chunk.Page,
		"chunk_index":       p.Chunk.ChunkIndex,
		"chunk_id":          p.Chunk.ChunkID,
		"text":              p.Chunk.Text,
		"corpus":            string(p.Chunk.Corpus),
		"lang_detected":     p.Chunk.Lang,
		"original_chunk_id": p.Chunk.ChunkID,
	}
}

type SearchFilter struct {
	Corpus Corpus `json:"corpus"`
}

// RetrievedPoint is a read-only search hit. ID is the dedup identity.
type RetrievedPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func (p RetrievedPoint) String(key string) string {
	v, ok := p.Payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Int reads an integer payload field, returning fallback when the field is
// absent or not a whole number.
func (p RetrievedPoint) Int(key string, fallback int) int {
	v, ok := p.Payload[key]
	if !ok || v == nil {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			return fallback
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return fallback
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return fallback
		}
		return i
	default:
		return fallback
	}
}

type DecisionResult struct {
	Filter *SearchFilter `json:"filter"`
	Boosts []string      `json:"boosts"`
	Code   Corpus        `json:"code,omitempty"`
}

type Snippet struct {
	N       int    `json:"n"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

type IndexResult struct {
	Indexed int `json:"indexed"`
	Batches int `json:"batches"`
}
