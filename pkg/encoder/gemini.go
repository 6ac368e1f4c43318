package encoder

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini embedding models.
const (
	// ModelGeminiEmbedding is the current Gemini embedding model
	// (3072 dims by default, customizable).
	ModelGeminiEmbedding = "gemini-embedding-001"
)

const (
	geminiDefaultDim   = 3072
	geminiDefaultModel = ModelGeminiEmbedding
)

// Gemini implements [Encoder] using the Gemini API embedContent endpoint.
type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

var _ Encoder = (*Gemini)(nil)

// NewGemini creates a Gemini encoder.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	cfg := config{
		model: geminiDefaultModel,
		dim:   geminiDefaultDim,
	}
	for _, o := range opts {
		o(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.httpClient != nil {
		cc.HTTPClient = cfg.httpClient
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("encoder: gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.model,
		dim:    cfg.dim,
	}, nil
}

// Encode returns embeddings for the given documents in one API call.
func (g *Gemini) Encode(ctx context.Context, docs []string) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}

	contents := make([]*genai.Content, len(docs))
	for i, doc := range docs {
		contents[i] = genai.NewContentFromText(doc, genai.RoleUser)
	}

	dim := int32(g.dim)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("encoder: gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(docs) {
		return nil, fmt.Errorf("encoder: gemini returned %d embeddings for %d documents", len(resp.Embeddings), len(docs))
	}

	vecs := make([][]float32, len(docs))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("encoder: missing embedding for index %d", i)
		}
		vecs[i] = emb.Values
	}
	return vecs, nil
}

// Dimension returns the configured vector dimensionality.
func (g *Gemini) Dimension() int {
	return g.dim
}

// Model returns the Gemini model identifier.
func (g *Gemini) Model() string {
	return g.model
}
