package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"watch_earn_service/internal/ledger/domain"
	"watch_earn_service/pkg/database"
	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, storage database.LocalStorage) LedgerStore {
	t.Helper()
	n := 0
	s, err := NewLedgerStore(context.Background(), storage,
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return s
}

// failingStorage 寫入一律失敗
type failingStorage struct {
	database.LocalStorage
}

func (failingStorage) SetItem(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStorage()
	s := newTestStore(t, storage)

	t.Run("fresh email", func(t *testing.T) {
		a, err := s.CreateAccount(ctx, "a@example.com", "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.StartingCoins, a.Coins)
		assert.True(t, a.HasFreeUpload)
		assert.Equal(t, fixedNow, a.CreatedAt)

		active, ok := s.ActiveAccount()
		require.True(t, ok)
		assert.Equal(t, a.ID, active.ID)
	})

	t.Run("duplicate email leaves users untouched", func(t *testing.T) {
		before, _, _ := storage.GetItem(ctx, KeyUsers)

		_, err := s.CreateAccount(ctx, "a@example.com", "imposter")
		assert.ErrorIs(t, err, errprocess.ErrDuplicateEmail)

		after, _, _ := storage.GetItem(ctx, KeyUsers)
		assert.JSONEq(t, string(before), string(after))
	})

	t.Run("email match is case sensitive", func(t *testing.T) {
		_, err := s.CreateAccount(ctx, "A@example.com", "alice2")
		assert.NoError(t, err)
	})
}

func TestAuthenticateIgnoresPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, database.NewMemoryStorage())
	created, err := s.CreateAccount(ctx, "a@example.com", "alice")
	require.NoError(t, err)

	a, err := s.Authenticate(ctx, "a@example.com", "anything at all")
	require.NoError(t, err)
	assert.Equal(t, created.ID, a.ID)

	_, err = s.Authenticate(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, errprocess.ErrNotFound)
}

func TestSetActiveAccountNilRemovesMarker(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStorage()
	s := newTestStore(t, storage)
	_, err := s.CreateAccount(ctx, "a@example.com", "alice")
	require.NoError(t, err)

	_, ok, _ := storage.GetItem(ctx, KeyCurrentUser)
	require.True(t, ok)

	require.NoError(t, s.SetActiveAccount(ctx, nil))
	_, ok = s.ActiveAccount()
	assert.False(t, ok)

	_, ok, _ = storage.GetItem(ctx, KeyCurrentUser)
	assert.False(t, ok, "logout removes only the session marker")
	_, ok, _ = storage.GetItem(ctx, KeyUsers)
	assert.True(t, ok)
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStorage()
	s := newTestStore(t, storage)
	a, err := s.CreateAccount(ctx, "a@example.com", "alice")
	require.NoError(t, err)

	_, err = s.AdjustBalance(ctx, a.ID, -5)
	require.NoError(t, err)
	got, err := s.AdjustBalance(ctx, a.ID, +5)
	require.NoError(t, err)
	assert.Equal(t, domain.StartingCoins, got.Coins, "round trip restores the balance")

	got, err = s.AdjustBalance(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Coins)

	// currentUser follows users
	raw, ok, _ := storage.GetItem(ctx, KeyCurrentUser)
	require.True(t, ok)
	var current domain.Account
	require.NoError(t, json.Unmarshal(raw, &current))
	assert.Equal(t, 60, current.Coins)

	_, err = s.AdjustBalance(ctx, "ghost", 1)
	assert.ErrorIs(t, err, errprocess.ErrNotFound)
}

func TestConsumeFreeUploadCredit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, database.NewMemoryStorage())
	a, err := s.CreateAccount(ctx, "a@example.com", "alice")
	require.NoError(t, err)

	got, err := s.ConsumeFreeUploadCredit(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.HasFreeUpload)

	got, err = s.ConsumeFreeUploadCredit(ctx, a.ID)
	require.NoError(t, err, "second call is a no-op")
	assert.False(t, got.HasFreeUpload)

	_, err = s.ConsumeFreeUploadCredit(ctx, "ghost")
	assert.ErrorIs(t, err, errprocess.ErrNotFound)
}

func TestListVideos(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, database.NewMemoryStorage())
	a, _ := s.CreateAccount(ctx, "a@example.com", "alice")
	b, _ := s.CreateAccount(ctx, "b@example.com", "bob")

	v1, err := s.CreateVideo(ctx, a.ID, "first", "https://youtu.be/one", "one")
	require.NoError(t, err)
	v2, err := s.CreateVideo(ctx, b.ID, "second", "https://youtu.be/two", "two")
	require.NoError(t, err)
	v3, err := s.CreateVideo(ctx, a.ID, "third", "https://youtu.be/three", "three")
	require.NoError(t, err)

	assert.Equal(t, 0, v1.Views+v1.Likes+v1.Subscribes)

	owned := s.ListOwnedVideos(a.ID)
	require.Len(t, owned, 2)
	assert.Equal(t, v1.ID, owned[0].ID)
	assert.Equal(t, v3.ID, owned[1].ID)
	for _, v := range owned {
		assert.Equal(t, a.ID, v.UserID)
	}

	others := s.ListOtherVideos(a.ID)
	require.Len(t, others, 1)
	assert.Equal(t, v2.ID, others[0].ID)
	for _, v := range others {
		assert.NotEqual(t, a.ID, v.UserID)
	}

	assert.Empty(t, s.ListOtherVideos(""), "no active account")
}

func TestIncrementVideoCounter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, database.NewMemoryStorage())
	a, _ := s.CreateAccount(ctx, "a@example.com", "alice")
	v, _ := s.CreateVideo(ctx, a.ID, "t", "https://youtu.be/x", "x")

	for _, kind := range []domain.CounterKind{domain.CounterView, domain.CounterView, domain.CounterLike, domain.CounterSubscribe} {
		_, err := s.IncrementVideoCounter(ctx, v.ID, kind)
		require.NoError(t, err)
	}
	got, err := s.GetVideo(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, 1, got.Subscribes)

	_, err = s.IncrementVideoCounter(ctx, "ghost", domain.CounterView)
	assert.ErrorIs(t, err, errprocess.ErrNotFound)

	_, err = s.IncrementVideoCounter(ctx, v.ID, domain.CounterKind("share"))
	assert.ErrorIs(t, err, errprocess.ErrValidation)
}

func TestEngagementRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, database.NewMemoryStorage())

	_, ok := s.FindEngagement("viewer", "video")
	assert.False(t, ok)

	_, err := s.RecordEngagement(ctx, EngagementParams{ViewerID: "viewer", VideoID: "video", WatchSeconds: 12, HasLiked: true, CoinsAwarded: domain.LikeReward})
	require.NoError(t, err)
	last, err := s.RecordEngagement(ctx, EngagementParams{ViewerID: "viewer", VideoID: "video", WatchSeconds: 30, HasLiked: true, HasSubscribed: true, CoinsAwarded: domain.SubscribeReward})
	require.NoError(t, err)
	_, err = s.RecordEngagement(ctx, EngagementParams{ViewerID: "other", VideoID: "video", WatchSeconds: 99})
	require.NoError(t, err)

	rec, ok := s.FindEngagement("viewer", "video")
	require.True(t, ok)
	assert.Equal(t, last.ID, rec.ID)
	assert.Equal(t, 30, rec.WatchTime)
	assert.True(t, rec.HasLiked)
	assert.True(t, rec.HasSubscribed)
	assert.Equal(t, domain.LikeReward+domain.SubscribeReward, rec.CoinsEarned)

	assert.Len(t, s.ListEngagements("viewer"), 2, "records are appended, not merged")

	_, err = s.RecordEngagement(ctx, EngagementParams{ViewerID: "viewer", VideoID: "video", WatchSeconds: -1})
	assert.ErrorIs(t, err, errprocess.ErrValidation)
}

func TestHydrateFromStorage(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStorage()
	s := newTestStore(t, storage)
	a, _ := s.CreateAccount(ctx, "a@example.com", "alice")
	v, _ := s.CreateVideo(ctx, a.ID, "t", "https://youtu.be/x", "x")
	_, _ = s.AdjustBalance(ctx, a.ID, 7)
	_, _ = s.RecordEngagement(ctx, EngagementParams{ViewerID: a.ID, VideoID: v.ID, WatchSeconds: 3})

	reloaded := newTestStore(t, storage)
	active, ok := reloaded.ActiveAccount()
	require.True(t, ok)
	assert.Equal(t, 57, active.Coins)
	assert.Len(t, reloaded.ListOwnedVideos(a.ID), 1)
	_, ok = reloaded.FindEngagement(a.ID, v.ID)
	assert.True(t, ok)
}

func TestHydrateRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	storage := database.NewMemoryStorage()
	require.NoError(t, storage.SetItem(ctx, KeyVideos, []byte(`[{"id":"v1","userId":"","videoId":"x"}]`)))

	_, err := NewLedgerStore(ctx, storage)
	assert.Error(t, err)

	require.NoError(t, storage.SetItem(ctx, KeyVideos, []byte(`not json`)))
	_, err = NewLedgerStore(ctx, storage)
	assert.Error(t, err)
}

func TestFailedWriteLeavesSnapshotUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := database.NewMemoryStorage()
	s := newTestStore(t, mem)
	a, err := s.CreateAccount(ctx, "a@example.com", "alice")
	require.NoError(t, err)

	broken := newTestStore(t, failingStorage{LocalStorage: mem})
	_, err = broken.AdjustBalance(ctx, a.ID, 100)
	assert.Error(t, err)

	got, err := broken.GetAccount(a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StartingCoins, got.Coins)

	_, err = broken.CreateVideo(ctx, a.ID, "t", "u", "x")
	assert.Error(t, err)
	assert.Empty(t, broken.ListOwnedVideos(a.ID))
}
