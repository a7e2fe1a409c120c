package openai

import (
	"context"

	llmhttp "github.com/difflens/difflens/internal/adapter/llm/http"
	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/review"
)

// Provider implements the use case Provider port on top of the HTTP client.
// Recovery of imperfect model output into findings happens here so the
// orchestrator never sees raw model text.
type Provider struct {
	client *HTTPClient
}

// NewProvider constructs a Provider for the given API key and model.
func NewProvider(apiKey, model string) *Provider {
	return &Provider{client: NewHTTPClient(apiKey, model)}
}

// Client exposes the underlying HTTP client for configuration.
func (p *Provider) Client() *HTTPClient {
	return p.client
}

// Review sends the rendered prompt and parses the findings out of whatever
// the model answered.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) ([]domain.Finding, error) {
	text, err := p.client.Call(ctx, req.Prompt, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return llmhttp.ParseFindings(text)
}
