// Package embedding holds wrappers shared by embedding adapters.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Ensure Paced implements the interface.
var _ driven.EmbeddingService = (*Paced)(nil)

// Paced spaces out embedding requests to a steady rate. Each Embed or
// EmbedBatch call waits for one token.
type Paced struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewPaced wraps svc. A non-positive perSecond returns svc unchanged.
func NewPaced(svc driven.EmbeddingService, perSecond float64) driven.EmbeddingService {
	if perSecond <= 0 {
		return svc
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Paced{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Embed waits for a token, then embeds text.
func (p *Paced) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pace embedding: %w", err)
	}
	return p.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds texts.
func (p *Paced) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pace embedding: %w", err)
	}
	return p.EmbeddingService.EmbedBatch(ctx, texts)
}
