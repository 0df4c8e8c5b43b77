package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// RAG is the retrieval-augmented answer collaborator: the platform backend
// that answers from curated course content.
type RAG interface {
	Query(ctx context.Context, question string, subject model.Subject) (*RAGResult, error)
}

// RAGResult is the slice of the backend response the resolver consumes.
// NoContent is true when the backend answered with a canned refusal because
// it found nothing relevant or was not confident enough.
type RAGResult struct {
	Answer     string
	Sources    []*model.Source
	Confidence float64
	NoContent  bool
}

type RAGClient struct {
	baseURL    string
	httpClient *http.Client
}

type RAGOption func(*RAGClient)

func WithRAGHTTPClient(client *http.Client) RAGOption {
	return func(c *RAGClient) {
		c.httpClient = client
	}
}

func NewRAG(baseURL string, opts ...RAGOption) (*RAGClient, error) {
	if baseURL == "" {
		return nil, goerr.New("rag base URL is required")
	}

	c := &RAGClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type ragQueryRequest struct {
	Query   string `json:"query"`
	Subject string `json:"subject,omitempty"`
}

type ragSource struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Subject    string  `json:"subject"`
	Chapter    string  `json:"chapter"`
	Similarity float64 `json:"similarity"`
}

type ragQueryResponse struct {
	GeneratedText string         `json:"generated_text"`
	Confidence    float64        `json:"confidence"`
	Sources       []*ragSource   `json:"sources"`
	Metadata      map[string]any `json:"metadata"`
}

func (c *RAGClient) Query(ctx context.Context, question string, subject model.Subject) (*RAGResult, error) {
	body, err := json.Marshal(ragQueryRequest{
		Query:   question,
		Subject: string(subject),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal rag query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rag/query", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rag request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send rag request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("rag backend returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	var decoded ragQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, goerr.Wrap(err, "failed to decode rag response")
	}

	result := &RAGResult{
		Answer:     decoded.GeneratedText,
		Confidence: decoded.Confidence,
	}

	// The backend marks its canned refusals in metadata.reason
	if reason, ok := decoded.Metadata["reason"].(string); ok {
		result.NoContent = reason == "no_results" || reason == "low_confidence"
	}

	for _, s := range decoded.Sources {
		result.Sources = append(result.Sources, &model.Source{
			ID:         s.ID,
			Type:       s.Type,
			Subject:    s.Subject,
			Chapter:    s.Chapter,
			Similarity: s.Similarity,
		})
	}

	return result, nil
}
