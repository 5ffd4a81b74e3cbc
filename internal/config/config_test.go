package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "EMBED_MODEL", "GEN_MODEL", "EMBED_DIM", "TOP_K", "QDRANT_COLLECTION", "RAG_FILTER_MODE", "INGEST_ERROR_DETAIL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LLMProvider != ProviderOpenAI {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
	if cfg.EmbedModel != "text-embedding-3-small" || cfg.GenModel != "gpt-4o-mini" || cfg.EmbedDim != 1536 {
		t.Fatalf("unexpected model defaults %q %q %d", cfg.EmbedModel, cfg.GenModel, cfg.EmbedDim)
	}
	if cfg.TopK != 8 || cfg.QdrantCollection != "legal_mvp" || cfg.RAGFilterMode != "strict" {
		t.Fatalf("unexpected retrieval defaults %+v", cfg)
	}
	if cfg.ChunkTargetTokens != 450 || cfg.ChunkOverlapSentences != 1 || cfg.IndexBatchSize != 64 {
		t.Fatalf("unexpected chunking defaults %+v", cfg)
	}
	if cfg.IngestErrorDetail {
		t.Fatalf("expected terse ingest errors by default")
	}
}

func TestLoadOllamaDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("EMBED_MODEL", "")
	t.Setenv("EMBED_DIM", "")

	cfg := Load()
	if cfg.LLMProvider != ProviderOllama || cfg.EmbedModel != "nomic-embed-text" || cfg.EmbedDim != 768 {
		t.Fatalf("unexpected ollama defaults %+v", cfg)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("TOP_K", "12")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("INGEST_ERROR_DETAIL", "true")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")
	t.Setenv("SNIPPET_MAX_CHARS", "not-a-number")

	cfg := Load()
	if cfg.TopK != 12 {
		t.Fatalf("expected top k 12, got %d", cfg.TopK)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.IngestErrorDetail || cfg.ResilienceBreakerEnabled {
		t.Fatalf("expected bool overrides to apply")
	}
	if cfg.SnippetMaxChars != 900 {
		t.Fatalf("expected fallback on invalid int, got %d", cfg.SnippetMaxChars)
	}
}
