package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// pineconeIndexPrefix namespaces indexes created by this package.
	pineconeIndexPrefix = "semantic-router--"

	pineconeControlPlane = "https://api.pinecone.io"

	// Metadata keys stored with every record.
	metaRoute     = "sr_route"
	metaUtterance = "sr_utterance"
)

// Pinecone is an [Index] wrapping the Pinecone HTTP API.
//
// The index is created on first use if it does not exist and the vector
// dimensionality is known (either configured up front or taken from the
// first Add call).
type Pinecone struct {
	apiKey       string
	indexName    string
	dimensions   int
	metric       string
	cloud        string
	region       string
	controlPlane string
	host         string
	client       *http.Client
}

var _ Index = (*Pinecone)(nil)

// PineconeOptions configures a Pinecone index.
type PineconeOptions struct {
	// APIKey authenticates against Pinecone. Required.
	APIKey string

	// IndexName is the index name; the "semantic-router--" prefix is
	// added if missing. Default "index".
	IndexName string

	// Dimensions is the vector dimensionality. If zero, index creation
	// is deferred until the first Add call reveals it.
	Dimensions int

	// Metric is the similarity metric. Default "cosine".
	Metric string

	// Cloud and Region select the serverless deployment target.
	// Defaults "aws" / "us-west-2".
	Cloud  string
	Region string

	// ControlPlaneURL overrides the Pinecone control plane endpoint.
	// For testing.
	ControlPlaneURL string

	// HostURL sets the data plane host directly, skipping index
	// discovery and creation. For testing.
	HostURL string

	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client
}

// NewPinecone connects to (or prepares to create) a Pinecone index.
func NewPinecone(ctx context.Context, opts PineconeOptions) (*Pinecone, error) {
	if opts.APIKey == "" {
		return nil, errors.New("index: pinecone API key is required")
	}

	name := opts.IndexName
	if name == "" {
		name = "index"
	}
	if !strings.HasPrefix(name, pineconeIndexPrefix) {
		name = pineconeIndexPrefix + name
	}

	p := &Pinecone{
		apiKey:       opts.APIKey,
		indexName:    name,
		dimensions:   opts.Dimensions,
		metric:       opts.Metric,
		cloud:        opts.Cloud,
		region:       opts.Region,
		controlPlane: opts.ControlPlaneURL,
		host:         opts.HostURL,
		client:       opts.HTTPClient,
	}
	if p.metric == "" {
		p.metric = "cosine"
	}
	if p.cloud == "" {
		p.cloud = "aws"
	}
	if p.region == "" {
		p.region = "us-west-2"
	}
	if p.controlPlane == "" {
		p.controlPlane = pineconeControlPlane
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}

	if p.host == "" {
		if err := p.initIndex(ctx, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// pineconeIndexDesc is the control plane's index description.
type pineconeIndexDesc struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

// initIndex discovers the index host, creating the index first when it
// does not exist and the dimensionality is known. With forceCreate and
// no dimensions it fails; without forceCreate it leaves the host empty
// so creation is retried on the first Add.
func (p *Pinecone) initIndex(ctx context.Context, forceCreate bool) error {
	desc, found, err := p.describeIndex(ctx)
	if err != nil {
		return err
	}
	if found {
		p.host = normalizeHost(desc.Host)
		p.dimensions = desc.Dimension
		return nil
	}

	if p.dimensions == 0 {
		if forceCreate {
			return errors.New("index: cannot create a pinecone index without dimensions")
		}
		return nil // deferred until Add reveals the dimensionality
	}

	body := map[string]any{
		"name":      p.indexName,
		"dimension": p.dimensions,
		"metric":    p.metric,
		"spec": map[string]any{
			"serverless": map[string]any{
				"cloud":  p.cloud,
				"region": p.region,
			},
		},
	}
	if err := p.do(ctx, http.MethodPost, p.controlPlane+"/indexes", body, nil); err != nil {
		return fmt.Errorf("index: create pinecone index: %w", err)
	}

	// Wait for the index to come up.
	for {
		desc, found, err := p.describeIndex(ctx)
		if err != nil {
			return err
		}
		if found && desc.Status.Ready {
			p.host = normalizeHost(desc.Host)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (p *Pinecone) describeIndex(ctx context.Context) (pineconeIndexDesc, bool, error) {
	var desc pineconeIndexDesc
	err := p.do(ctx, http.MethodGet, p.controlPlane+"/indexes/"+p.indexName, nil, &desc)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return desc, false, nil
	}
	if err != nil {
		return desc, false, fmt.Errorf("index: describe pinecone index: %w", err)
	}
	return desc, true, nil
}

func (p *Pinecone) ensureHost(ctx context.Context) error {
	if p.host != "" {
		return nil
	}
	return p.initIndex(ctx, true)
}

func (p *Pinecone) Add(ctx context.Context, vectors [][]float32, routes, utterances []string) error {
	if len(vectors) != len(routes) || len(routes) != len(utterances) {
		return fmt.Errorf("index: mismatched lengths: %d vectors, %d routes, %d utterances",
			len(vectors), len(routes), len(utterances))
	}
	if len(vectors) == 0 {
		return nil
	}
	if p.dimensions == 0 {
		p.dimensions = len(vectors[0])
	}
	if err := p.ensureHost(ctx); err != nil {
		return err
	}

	type vector struct {
		ID       string            `json:"id"`
		Values   []float32         `json:"values"`
		Metadata map[string]string `json:"metadata"`
	}
	upsert := make([]vector, len(vectors))
	for i, vec := range vectors {
		upsert[i] = vector{
			ID:     NewRecordID(),
			Values: vec,
			Metadata: map[string]string{
				metaRoute:     routes[i],
				metaUtterance: utterances[i],
			},
		}
	}

	body := map[string]any{"vectors": upsert}
	if err := p.do(ctx, http.MethodPost, p.host+"/vectors/upsert", body, nil); err != nil {
		return fmt.Errorf("index: pinecone upsert: %w", err)
	}
	return nil
}

func (p *Pinecone) Query(ctx context.Context, vector []float32, topK int) ([]float64, []string, error) {
	if err := p.ensureHost(ctx); err != nil {
		return nil, nil, err
	}

	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []struct {
			ID       string            `json:"id"`
			Score    float64           `json:"score"`
			Metadata map[string]string `json:"metadata"`
		} `json:"matches"`
	}
	if err := p.do(ctx, http.MethodPost, p.host+"/query", body, &resp); err != nil {
		return nil, nil, fmt.Errorf("index: pinecone query: %w", err)
	}

	scores := make([]float64, len(resp.Matches))
	routes := make([]string, len(resp.Matches))
	for i, m := range resp.Matches {
		scores[i] = m.Score
		routes[i] = m.Metadata[metaRoute]
	}
	return scores, routes, nil
}

func (p *Pinecone) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.ensureHost(ctx); err != nil {
		return err
	}
	body := map[string]any{"ids": ids}
	if err := p.do(ctx, http.MethodPost, p.host+"/vectors/delete", body, nil); err != nil {
		return fmt.Errorf("index: pinecone delete: %w", err)
	}
	return nil
}

func (p *Pinecone) DeleteAll(ctx context.Context) error {
	if err := p.ensureHost(ctx); err != nil {
		return err
	}
	body := map[string]any{"deleteAll": true}
	if err := p.do(ctx, http.MethodPost, p.host+"/vectors/delete", body, nil); err != nil {
		return fmt.Errorf("index: pinecone delete all: %w", err)
	}
	return nil
}

func (p *Pinecone) Describe(ctx context.Context) (Stats, error) {
	if err := p.ensureHost(ctx); err != nil {
		return Stats{}, err
	}
	var resp struct {
		Dimension        int `json:"dimension"`
		TotalVectorCount int `json:"totalVectorCount"`
	}
	if err := p.do(ctx, http.MethodPost, p.host+"/describe_index_stats", map[string]any{}, &resp); err != nil {
		return Stats{}, fmt.Errorf("index: pinecone describe: %w", err)
	}
	return Stats{Type: "pinecone", Dimensions: resp.Dimension, Vectors: resp.TotalVectorCount}, nil
}

// DeleteIndex removes the whole index from the control plane.
func (p *Pinecone) DeleteIndex(ctx context.Context) error {
	if err := p.do(ctx, http.MethodDelete, p.controlPlane+"/indexes/"+p.indexName, nil, nil); err != nil {
		return fmt.Errorf("index: delete pinecone index: %w", err)
	}
	p.host = ""
	return nil
}

func (p *Pinecone) Close() error {
	return nil
}

// statusError carries a non-2xx HTTP response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

// do sends a JSON request and decodes a JSON response (when out != nil).
func (p *Pinecone) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", p.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizeHost prefixes a scheme when the control plane returns a bare
// hostname.
func normalizeHost(host string) string {
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}
