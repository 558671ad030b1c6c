package visibility

import (
	"context"
	"errors"

	"github.com/flocknet/flock-backend/internal/repository"
	"github.com/flocknet/flock-backend/pkg/cache"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
)

// Loader resolves a viewer's Sets, serving from Redis when possible.
// Block/mute mutations call Invalidate so the next load re-derives
// from the store.
type Loader struct {
	relRepo repository.RelationshipRepository
	cache   cache.Service
}

// NewLoader creates a new visibility Loader. cache may be nil.
func NewLoader(relRepo repository.RelationshipRepository, cacheService cache.Service) *Loader {
	return &Loader{relRepo: relRepo, cache: cacheService}
}

// Load returns the viewer's current block/mute sets
func (l *Loader) Load(ctx context.Context, viewerID string) (Sets, error) {
	if l.cache != nil {
		blocked, muted, err := l.cache.GetViewerSets(ctx, viewerID)
		if err == nil {
			return NewSets(blocked, muted), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			pkglogger.GetLogger().Warn().Err(err).Str("viewer_id", viewerID).Msg("viewer sets cache read failed")
		}
	}

	blocked, err := l.relRepo.BlockedIDs(viewerID)
	if err != nil {
		return Sets{}, err
	}
	muted, err := l.relRepo.MutedIDs(viewerID)
	if err != nil {
		return Sets{}, err
	}

	if l.cache != nil {
		if err := l.cache.SetViewerSets(ctx, viewerID, blocked, muted); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("viewer_id", viewerID).Msg("viewer sets cache write failed")
		}
	}
	return NewSets(blocked, muted), nil
}

// Invalidate drops the cached sets for a viewer
func (l *Loader) Invalidate(ctx context.Context, viewerID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateViewer(ctx, viewerID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("viewer_id", viewerID).Msg("viewer sets invalidate failed")
	}
}
