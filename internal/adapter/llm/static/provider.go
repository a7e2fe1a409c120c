// Package static provides a canned model provider for dry runs and tests.
package static

import (
	"context"

	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/review"
)

// Provider implements the use case Provider port with fixed findings. It
// never touches the network, so runs wired to it exercise the whole
// pipeline deterministically.
type Provider struct {
	findings []domain.Finding
}

// NewProvider constructs a static Provider returning the given findings on
// every call. With no findings a single low-stakes default is used.
func NewProvider(findings ...domain.Finding) *Provider {
	if len(findings) == 0 {
		findings = []domain.Finding{{
			Type:        domain.FindingStyle,
			Severity:    domain.SeverityLow,
			Description: "This is a canned finding from the static provider.",
			Confidence:  1.0,
			IsNewIssue:  true,
		}}
	}
	return &Provider{findings: findings}
}

// Review returns the configured findings, ignoring the prompt.
func (p *Provider) Review(_ context.Context, _ review.ProviderRequest) ([]domain.Finding, error) {
	out := make([]domain.Finding, len(p.findings))
	copy(out, p.findings)
	return out, nil
}
