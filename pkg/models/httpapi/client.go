// Package httpapi backs generators and embedders with a remote
// model-serving endpoint speaking a small JSON protocol:
//
//	POST {base}/generate {"model": ..., "seed": ..., "input_text" | "input_image": ...}
//	  -> {"output_text": ...} or {"output_image": base64}
//	POST {base}/embed {"model": ..., "input_text" | "input_image": ...}
//	  -> {"vector": [...]}
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func New(baseURL string, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 300 * time.Second},
	}
}

type generateRequest struct {
	Model      string `json:"model"`
	Seed       int    `json:"seed"`
	InputText  string `json:"input_text,omitempty"`
	InputImage []byte `json:"input_image,omitempty"`
}

type generateResponse struct {
	OutputText  *string `json:"output_text"`
	OutputImage []byte  `json:"output_image"`
}

type embedRequest struct {
	Model      string `json:"model"`
	InputText  string `json:"input_text,omitempty"`
	InputImage []byte `json:"input_image,omitempty"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
}

func (c *Client) post(ctx context.Context, path string, payload any, into any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return xe.Wrap(err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body),
	)
	if err != nil {
		return xe.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return xe.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return xe.New(fmt.Sprintf(
			"model endpoint %s returned status %d: %s", path, resp.StatusCode, message,
		))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// Generator binds one remote model name and its declared modality.
type Generator struct {
	client   *Client
	model    string
	modality domain.Modality
}

func (c *Client) Generator(model string, modality domain.Modality) *Generator {
	return &Generator{client: c, model: model, modality: modality}
}

func (g *Generator) Modality() domain.Modality { return g.modality }

func (g *Generator) Generate(ctx context.Context, input domain.Output, seed int) (domain.Output, error) {
	req := generateRequest{Model: g.model, Seed: seed}
	switch input.Modality {
	case domain.Text:
		req.InputText = input.Text
	case domain.Image:
		req.InputImage = input.Image
	}

	var resp generateResponse
	if err := g.client.post(ctx, "/generate", req, &resp); err != nil {
		return domain.Output{}, err
	}

	switch {
	case resp.OutputText != nil:
		return domain.TextOutput(*resp.OutputText), nil
	case len(resp.OutputImage) != 0:
		return domain.ImageOutput(resp.OutputImage), nil
	default:
		return domain.Output{}, xe.New("model endpoint returned neither text nor image")
	}
}

// Embedder binds one remote embedding model name.
type Embedder struct {
	client *Client
	model  string
}

func (c *Client) Embedder(model string) *Embedder {
	return &Embedder{client: c, model: model}
}

func (e *Embedder) Embed(ctx context.Context, content domain.Output) ([]float32, error) {
	req := embedRequest{Model: e.model}
	switch content.Modality {
	case domain.Text:
		req.InputText = content.Text
	case domain.Image:
		req.InputImage = content.Image
	}

	var resp embedResponse
	if err := e.client.post(ctx, "/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vector) == 0 {
		return nil, xe.New("model endpoint returned an empty vector")
	}
	return resp.Vector, nil
}
