package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

type fakeScraper struct {
	cookies  models.CookieSet
	loginErr error

	result    *models.ScrapeResult
	scrapeErr error

	loginCalls  int
	scrapeCalls int
	lastCookies models.CookieSet
}

func (s *fakeScraper) Login(ctx context.Context, cred models.Credential) (models.CookieSet, error) {
	s.loginCalls++
	return s.cookies, s.loginErr
}

func (s *fakeScraper) Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error) {
	s.scrapeCalls++
	s.lastCookies = cookies
	if s.scrapeErr != nil {
		return nil, s.scrapeErr
	}
	// Return a fresh copy; callers mutate the result during persistence
	r := *s.result
	r.Videos = append([]models.Video(nil), s.result.Videos...)
	return &r, nil
}

type memProfileStorage struct {
	nextID   int64
	byUnique map[string]*models.Profile
	err      error
}

func newMemProfileStorage() *memProfileStorage {
	return &memProfileStorage{nextID: 1, byUnique: make(map[string]*models.Profile)}
}

func (s *memProfileStorage) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	stored, ok := s.byUnique[profile.UniqueID]
	if !ok {
		p := *profile
		p.ID = s.nextID
		s.nextID++
		s.byUnique[profile.UniqueID] = &p
		return &p, nil
	}
	id := stored.ID
	p := *profile
	p.ID = id
	s.byUnique[profile.UniqueID] = &p
	return &p, nil
}

func (s *memProfileStorage) GetProfileByUniqueID(ctx context.Context, uniqueID string) (*models.Profile, error) {
	p, ok := s.byUnique[uniqueID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return p, nil
}

func (s *memProfileStorage) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	return nil, nil
}

func (s *memProfileStorage) CountProfiles(ctx context.Context) (int, error) {
	return len(s.byUnique), nil
}

type memVideoStorage struct {
	nextID  int64
	byVideo map[string]*models.Video
	err     error
}

func newMemVideoStorage() *memVideoStorage {
	return &memVideoStorage{nextID: 1, byVideo: make(map[string]*models.Video)}
}

func (s *memVideoStorage) UpsertVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := *video
	if stored, ok := s.byVideo[video.VideoID]; ok {
		v.ID = stored.ID
	} else {
		v.ID = s.nextID
		s.nextID++
	}
	s.byVideo[video.VideoID] = &v
	return &v, nil
}

func (s *memVideoStorage) ListVideosByProfile(ctx context.Context, profileID int64) ([]*models.Video, error) {
	return nil, nil
}

func (s *memVideoStorage) CountVideos(ctx context.Context) (int, error) {
	return len(s.byVideo), nil
}

type memSnapshotStore struct {
	saved map[string][]byte
	err   error
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{saved: make(map[string][]byte)}
}

func (s *memSnapshotStore) SaveSnapshot(ctx context.Context, target string, state []byte) error {
	if s.err != nil {
		return s.err
	}
	s.saved[target] = state
	return nil
}

func (s *memSnapshotStore) ListSnapshotKeys(ctx context.Context, target string) ([]string, error) {
	return nil, nil
}

func (s *memSnapshotStore) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}

func sampleResult() *models.ScrapeResult {
	return &models.ScrapeResult{
		Profile: models.Profile{UniqueID: "cooluser"},
		Videos: []models.Video{
			{VideoID: "100"},
			{VideoID: "200"},
		},
		RawState: []byte(`{"UserModule":{}}`),
	}
}

func TestScrapePersistsProfileAndVideos(t *testing.T) {
	scraperFake := &fakeScraper{result: sampleResult()}
	profiles := newMemProfileStorage()
	videos := newMemVideoStorage()
	snapshots := newMemSnapshotStore()

	svc := NewService(scraperFake, profiles, videos, snapshots, Config{Snapshots: true}, arbor.NewLogger())

	cookies := models.CookieSet{{Name: "sessionid", Value: "tok"}}
	result, err := svc.Scrape(context.Background(), cookies, "cooluser")
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Profile.ID)
	for _, v := range result.Videos {
		assert.Equal(t, result.Profile.ID, v.ProfileID)
		assert.NotZero(t, v.ID)
	}

	stored, err := profiles.GetProfileByUniqueID(context.Background(), "cooluser")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
	assert.Len(t, videos.byVideo, 2)
	assert.Contains(t, snapshots.saved, "cooluser")
}

func TestScrapeSnapshotFailureIsAbsorbed(t *testing.T) {
	scraperFake := &fakeScraper{result: sampleResult()}
	snapshots := newMemSnapshotStore()
	snapshots.err = errors.New("disk full")

	svc := NewService(scraperFake, newMemProfileStorage(), newMemVideoStorage(), snapshots,
		Config{Snapshots: true}, arbor.NewLogger())

	cookies := models.CookieSet{{Name: "sessionid", Value: "tok"}}
	_, err := svc.Scrape(context.Background(), cookies, "cooluser")
	assert.NoError(t, err)
}

func TestScrapeNilSnapshotStore(t *testing.T) {
	scraperFake := &fakeScraper{result: sampleResult()}

	svc := NewService(scraperFake, newMemProfileStorage(), newMemVideoStorage(), nil,
		Config{Snapshots: true}, arbor.NewLogger())

	cookies := models.CookieSet{{Name: "sessionid", Value: "tok"}}
	_, err := svc.Scrape(context.Background(), cookies, "cooluser")
	assert.NoError(t, err)
}

func TestScrapeProfilePersistenceFailureFails(t *testing.T) {
	scraperFake := &fakeScraper{result: sampleResult()}
	profiles := newMemProfileStorage()
	profiles.err = errors.New("database locked")
	videos := newMemVideoStorage()

	svc := NewService(scraperFake, profiles, videos, nil, Config{}, arbor.NewLogger())

	cookies := models.CookieSet{{Name: "sessionid", Value: "tok"}}
	_, err := svc.Scrape(context.Background(), cookies, "cooluser")
	assert.Error(t, err)
	// No video write is attempted when the profile write fails
	assert.Empty(t, videos.byVideo)
}

func TestLoginScrapeChainsCookies(t *testing.T) {
	cookies := models.CookieSet{{Name: "sessionid", Value: "tok"}}
	scraperFake := &fakeScraper{cookies: cookies, result: sampleResult()}

	svc := NewService(scraperFake, newMemProfileStorage(), newMemVideoStorage(), nil,
		Config{}, arbor.NewLogger())

	_, err := svc.LoginScrape(context.Background(), models.Credential{Username: "u", Password: "p"}, "cooluser")
	require.NoError(t, err)

	assert.Equal(t, 1, scraperFake.loginCalls)
	assert.Equal(t, 1, scraperFake.scrapeCalls)
	assert.Equal(t, cookies, scraperFake.lastCookies)
}

func TestLoginScrapeStopsOnLoginFailure(t *testing.T) {
	scraperFake := &fakeScraper{loginErr: errors.New("rejected")}

	svc := NewService(scraperFake, newMemProfileStorage(), newMemVideoStorage(), nil,
		Config{}, arbor.NewLogger())

	_, err := svc.LoginScrape(context.Background(), models.Credential{Username: "u", Password: "p"}, "cooluser")
	assert.Error(t, err)
	assert.Equal(t, 0, scraperFake.scrapeCalls)
}
