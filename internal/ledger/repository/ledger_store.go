package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"watch_earn_service/internal/ledger/domain"
	"watch_earn_service/pkg/database"
	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keys, one serialized record each
const (
	KeyCurrentUser   = "currentUser"
	KeyUsers         = "users"
	KeyVideos        = "videos"
	KeyWatchSessions = "watchSessions"
)

// LedgerStore 帳號、影片、觀看紀錄的唯一資料來源
type LedgerStore interface {
	CreateAccount(ctx context.Context, email, username string) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	SetActiveAccount(ctx context.Context, account *domain.Account) error
	ActiveAccount() (*domain.Account, bool)
	GetAccount(accountID string) (*domain.Account, error)
	AdjustBalance(ctx context.Context, accountID string, delta int) (*domain.Account, error)
	ConsumeFreeUploadCredit(ctx context.Context, accountID string) (*domain.Account, error)

	ListOwnedVideos(accountID string) []domain.VideoPost
	ListOtherVideos(accountID string) []domain.VideoPost
	GetVideo(videoID string) (*domain.VideoPost, error)
	CreateVideo(ctx context.Context, ownerID, title, url, externalVideoID string) (*domain.VideoPost, error)
	IncrementVideoCounter(ctx context.Context, videoID string, kind domain.CounterKind) (*domain.VideoPost, error)

	RecordEngagement(ctx context.Context, rec EngagementParams) (*domain.EngagementRecord, error)
	FindEngagement(viewerID, videoID string) (*domain.EngagementRecord, bool)
	ListEngagements(viewerID string) []domain.EngagementRecord
}

// EngagementParams input of RecordEngagement
type EngagementParams struct {
	ViewerID      string
	VideoID       string
	WatchSeconds  int
	HasLiked      bool
	HasSubscribed bool
	CoinsAwarded  int
}

// Option configure a ledgerStore
type Option func(*ledgerStore)

// WithIDGenerator replace uuid ids (tests)
func WithIDGenerator(f func() string) Option {
	return func(s *ledgerStore) { s.newID = f }
}

// WithClock replace time.Now (tests)
func WithClock(f func() time.Time) Option {
	return func(s *ledgerStore) { s.now = f }
}

type ledgerStore struct {
	mu      sync.Mutex
	storage database.LocalStorage

	current  *domain.Account
	users    []domain.Account
	videos   []domain.VideoPost
	sessions []domain.EngagementRecord

	newID func() string
	now   func() time.Time
}

// NewLedgerStore hydrate the snapshot from storage once
func NewLedgerStore(ctx context.Context, storage database.LocalStorage, opts ...Option) (LedgerStore, error) {
	s := &ledgerStore{
		storage: storage,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ledgerStore) load(ctx context.Context) error {
	if err := loadCollection(ctx, s.storage, KeyUsers, &s.users, (*domain.Account).Validate); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.storage, KeyVideos, &s.videos, (*domain.VideoPost).Validate); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.storage, KeyWatchSessions, &s.sessions, (*domain.EngagementRecord).Validate); err != nil {
		return err
	}

	raw, ok, err := s.storage.GetItem(ctx, KeyCurrentUser)
	if err != nil {
		return fmt.Errorf("load %s: %w", KeyCurrentUser, err)
	}
	if ok {
		var current domain.Account
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode %s: %w", KeyCurrentUser, err)
		}
		if err := current.Validate(); err != nil {
			return fmt.Errorf("decode %s: %w", KeyCurrentUser, err)
		}
		// users 為準, currentUser 可能是舊的快照
		if i := s.accountIndex(current.ID); i >= 0 {
			current = s.users[i]
		} else {
			logger.Log.Warn("currentUser not present in users", zap.String("accountID", current.ID))
		}
		s.current = &current
	}

	logger.Log.Info("ledger hydrated",
		zap.Int("users", len(s.users)),
		zap.Int("videos", len(s.videos)),
		zap.Int("watchSessions", len(s.sessions)),
		zap.Bool("active", s.current != nil),
	)
	return nil
}

func loadCollection[T any](ctx context.Context, storage database.LocalStorage, key string, dst *[]T, validate func(*T) error) error {
	raw, ok, err := storage.GetItem(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		*dst = nil
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	for i := range items {
		if err := validate(&items[i]); err != nil {
			return fmt.Errorf("decode %s[%d]: %w", key, i, err)
		}
	}
	*dst = items
	return nil
}

func (s *ledgerStore) write(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.storage.SetItem(ctx, key, data); err != nil {
		logger.Log.Error("persist failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// commitUsers persist users and, when the active account is among them, currentUser
func (s *ledgerStore) commitUsers(ctx context.Context, users []domain.Account) error {
	if err := s.write(ctx, KeyUsers, users); err != nil {
		return err
	}
	s.users = users

	if s.current == nil {
		return nil
	}
	if i := s.accountIndex(s.current.ID); i >= 0 && s.users[i] != *s.current {
		if err := s.write(ctx, KeyCurrentUser, s.users[i]); err != nil {
			return err
		}
		current := s.users[i]
		s.current = &current
	}
	return nil
}

func (s *ledgerStore) accountIndex(accountID string) int {
	for i := range s.users {
		if s.users[i].ID == accountID {
			return i
		}
	}
	return -1
}

func (s *ledgerStore) videoIndex(videoID string) int {
	for i := range s.videos {
		if s.videos[i].ID == videoID {
			return i
		}
	}
	return -1
}

// CreateAccount email 必須唯一 (大小寫敏感), 新帳號成為目前登入身分
func (s *ledgerStore) CreateAccount(ctx context.Context, email, username string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, errprocess.Wrap(errprocess.ErrDuplicateEmail, "email[%s] already registered", email)
		}
	}

	account := domain.Account{
		ID:            s.newID(),
		Email:         email,
		Username:      username,
		Coins:         domain.StartingCoins,
		CreatedAt:     s.now(),
		HasFreeUpload: true,
	}

	users := append(append([]domain.Account(nil), s.users...), account)
	if err := s.commitUsers(ctx, users); err != nil {
		return nil, err
	}
	if err := s.setActive(ctx, &account); err != nil {
		return nil, err
	}

	logger.Log.Info("account created", zap.String("accountID", account.ID), zap.String("email", email))
	return &account, nil
}

// Authenticate 以 email 查找帳號, password 不做驗證
func (s *ledgerStore) Authenticate(_ context.Context, email, _ string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			account := u
			return &account, nil
		}
	}
	return nil, errprocess.Wrap(errprocess.ErrNotFound, "email[%s] not registered", email)
}

// SetActiveAccount nil clears the session and removes the persisted marker
func (s *ledgerStore) SetActiveAccount(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setActive(ctx, account)
}

func (s *ledgerStore) setActive(ctx context.Context, account *domain.Account) error {
	if account == nil {
		if err := s.storage.RemoveItem(ctx, KeyCurrentUser); err != nil {
			return fmt.Errorf("remove %s: %w", KeyCurrentUser, err)
		}
		s.current = nil
		return nil
	}

	active := *account
	if i := s.accountIndex(account.ID); i >= 0 {
		active = s.users[i]
	}
	if err := s.write(ctx, KeyCurrentUser, active); err != nil {
		return err
	}
	s.current = &active
	return nil
}

func (s *ledgerStore) ActiveAccount() (*domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, false
	}
	account := *s.current
	return &account, true
}

func (s *ledgerStore) GetAccount(accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.accountIndex(accountID)
	if i < 0 {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "account[%s] not found", accountID)
	}
	account := s.users[i]
	return &account, nil
}

// AdjustBalance 加減金幣, no lower bound here: callers check sufficiency first
func (s *ledgerStore) AdjustBalance(ctx context.Context, accountID string, delta int) (*domain.Account, error) {
	return s.updateAccount(ctx, accountID, func(a *domain.Account) {
		a.Coins += delta
	})
}

// ConsumeFreeUploadCredit idempotent
func (s *ledgerStore) ConsumeFreeUploadCredit(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.updateAccount(ctx, accountID, func(a *domain.Account) {
		a.HasFreeUpload = false
	})
}

func (s *ledgerStore) updateAccount(ctx context.Context, accountID string, mutate func(*domain.Account)) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.accountIndex(accountID)
	if i < 0 {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "account[%s] not found", accountID)
	}

	users := append([]domain.Account(nil), s.users...)
	mutate(&users[i])
	if err := s.commitUsers(ctx, users); err != nil {
		return nil, err
	}

	account := s.users[i]
	return &account, nil
}

// ListOwnedVideos insertion order
func (s *ledgerStore) ListOwnedVideos(accountID string) []domain.VideoPost {
	return s.filterVideos(func(v *domain.VideoPost) bool { return v.UserID == accountID })
}

// ListOtherVideos empty when accountID is empty (no active account)
func (s *ledgerStore) ListOtherVideos(accountID string) []domain.VideoPost {
	if accountID == "" {
		return []domain.VideoPost{}
	}
	return s.filterVideos(func(v *domain.VideoPost) bool { return v.UserID != accountID })
}

func (s *ledgerStore) filterVideos(keep func(*domain.VideoPost) bool) []domain.VideoPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := []domain.VideoPost{}
	for i := range s.videos {
		if keep(&s.videos[i]) {
			res = append(res, s.videos[i])
		}
	}
	return res
}

func (s *ledgerStore) GetVideo(videoID string) (*domain.VideoPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.videoIndex(videoID)
	if i < 0 {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "video[%s] not found", videoID)
	}
	video := s.videos[i]
	return &video, nil
}

// CreateVideo 只新增影片, charging the uploader is the caller's job
func (s *ledgerStore) CreateVideo(ctx context.Context, ownerID, title, url, externalVideoID string) (*domain.VideoPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video := domain.VideoPost{
		ID:         s.newID(),
		UserID:     ownerID,
		Title:      title,
		URL:        url,
		VideoID:    externalVideoID,
		UploadedAt: s.now(),
	}

	videos := append(append([]domain.VideoPost(nil), s.videos...), video)
	if err := s.write(ctx, KeyVideos, videos); err != nil {
		return nil, err
	}
	s.videos = videos

	logger.Log.Info("video created", zap.String("videoID", video.ID), zap.String("owner", ownerID))
	return &video, nil
}

func (s *ledgerStore) IncrementVideoCounter(ctx context.Context, videoID string, kind domain.CounterKind) (*domain.VideoPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.videoIndex(videoID)
	if i < 0 {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "video[%s] not found", videoID)
	}

	videos := append([]domain.VideoPost(nil), s.videos...)
	if err := videos[i].Increment(kind); err != nil {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "video[%s]: %v", videoID, err)
	}
	if err := s.write(ctx, KeyVideos, videos); err != nil {
		return nil, err
	}
	s.videos = videos

	video := s.videos[i]
	return &video, nil
}

// RecordEngagement append-only, history is never rewritten
func (s *ledgerStore) RecordEngagement(ctx context.Context, p EngagementParams) (*domain.EngagementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := domain.EngagementRecord{
		ID:            s.newID(),
		UserID:        p.ViewerID,
		VideoID:       p.VideoID,
		WatchTime:     p.WatchSeconds,
		HasLiked:      p.HasLiked,
		HasSubscribed: p.HasSubscribed,
		CoinsEarned:   p.CoinsAwarded,
		CreatedAt:     s.now(),
	}
	if err := rec.Validate(); err != nil {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "%v", err)
	}

	sessions := append(append([]domain.EngagementRecord(nil), s.sessions...), rec)
	if err := s.write(ctx, KeyWatchSessions, sessions); err != nil {
		return nil, err
	}
	s.sessions = sessions

	return &rec, nil
}

// FindEngagement folds every record of (viewer, video) into one: the latest id and
// timestamp, the longest watch time, like/subscribe granted if any record granted
// them, and the total coins earned.
func (s *ledgerStore) FindEngagement(viewerID, videoID string) (*domain.EngagementRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var merged *domain.EngagementRecord
	for _, r := range s.sessions {
		if r.UserID != viewerID || r.VideoID != videoID {
			continue
		}
		if merged == nil {
			rec := r
			merged = &rec
			continue
		}
		merged.ID = r.ID
		merged.CreatedAt = r.CreatedAt
		if r.WatchTime > merged.WatchTime {
			merged.WatchTime = r.WatchTime
		}
		merged.HasLiked = merged.HasLiked || r.HasLiked
		merged.HasSubscribed = merged.HasSubscribed || r.HasSubscribed
		merged.CoinsEarned += r.CoinsEarned
	}
	return merged, merged != nil
}

// ListEngagements every record of viewerID in insertion order
func (s *ledgerStore) ListEngagements(viewerID string) []domain.EngagementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := []domain.EngagementRecord{}
	for _, r := range s.sessions {
		if r.UserID == viewerID {
			res = append(res, r)
		}
	}
	return res
}
