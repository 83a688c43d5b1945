package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
	"github.com/Strob0t/workflow-notify/internal/port/cache"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
)

// CachedProvider remembers workflow lookups. Runs and jobs change while a
// workflow executes and always go to the wrapped provider.
type CachedProvider struct {
	ciprovider.Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps p so that GetWorkflow results are kept for ttl.
func NewCachedProvider(p ciprovider.Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Provider: p, cache: c, ttl: ttl}
}

func workflowKey(ref ciprovider.RunRef) string {
	return "workflow:" + ref.Repository() + ":" + ref.Workflow
}

// GetWorkflow returns the cached workflow for ref or fetches and stores it.
// Cache failures fall through to the provider.
func (p *CachedProvider) GetWorkflow(ctx context.Context, ref ciprovider.RunRef) (*workflow.Workflow, error) {
	key := workflowKey(ref)

	if data, found, err := p.cache.Get(ctx, key); err == nil && found {
		var wf workflow.Workflow
		if err := json.Unmarshal(data, &wf); err == nil {
			return &wf, nil
		}
	}

	wf, err := p.Provider.GetWorkflow(ctx, ref)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(wf); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
			slog.DebugContext(ctx, "workflow cache set failed", "key", key, "error", err)
		}
	}
	return wf, nil
}
