package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/specto/internal/models"
)

// ErrNotFound is returned by storage lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// ProfileStorage persists normalized profiles, upserting by unique id.
type ProfileStorage interface {
	// UpsertProfile inserts or updates the profile keyed by UniqueID and
	// returns the persisted record including its surrogate id.
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetProfileByUniqueID(ctx context.Context, uniqueID string) (*models.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error)
	CountProfiles(ctx context.Context) (int, error)
}

// VideoStorage persists normalized content items, upserting by video id.
// Videos reference a parent profile by foreign key.
type VideoStorage interface {
	UpsertVideo(ctx context.Context, video *models.Video) (*models.Video, error)
	ListVideosByProfile(ctx context.Context, profileID int64) ([]*models.Video, error)
	CountVideos(ctx context.Context) (int, error)
}

// SnapshotStore archives raw page-state blobs for diagnostics, so
// normalization regressions can be replayed against the state that caused
// them. Writes are best-effort; a snapshot failure never fails a scrape.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, target string, state []byte) error
	ListSnapshotKeys(ctx context.Context, target string) ([]string, error)
	GetSnapshot(ctx context.Context, key string) ([]byte, error)
}
