package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"watch_earn_service/internal/ledger/domain"
	"watch_earn_service/internal/ledger/repository"
	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"
	"watch_earn_service/pkg/videoref"

	"go.uber.org/zap"
)

// LedgerUseCase 這裡封裝了對外提供的應用服務
type LedgerUseCase interface {
	Signup(ctx context.Context, email, password, username string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	Logout(ctx context.Context) error
	CurrentAccount() (*domain.Account, error)
	UploadVideo(ctx context.Context, up domain.UploadVideoReq) (*domain.VideoPost, error)
	Dashboard(ctx context.Context) (*domain.DashboardRes, error)
	WatchableVideos(ctx context.Context) ([]domain.VideoPost, error)
}

type ledgerUseCase struct {
	store  repository.LedgerStore
	events *EventSink
}

// NewLedgerUseCase 建立一個新的 LedgerUseCase
func NewLedgerUseCase(store repository.LedgerStore, events *EventSink) LedgerUseCase {
	return &ledgerUseCase{
		store:  store,
		events: events,
	}
}

// Signup 建立帳號並登入
func (l *ledgerUseCase) Signup(ctx context.Context, email, password, username string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "email is required")
	}

	account, err := l.store.CreateAccount(ctx, email, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	l.events.Emit(ctx, domain.LedgerEvent{
		Type:      domain.EventAccountCreated,
		AccountID: account.ID,
		Delta:     account.Coins,
		Balance:   account.Coins,
		Reason:    "starting balance",
	})
	return account, nil
}

// Login 只比對 email
func (l *ledgerUseCase) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := l.store.Authenticate(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	if err := l.store.SetActiveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.Log.Info("login", zap.String("accountID", account.ID))
	return account, nil
}

// Logout 清除目前登入身分, history stays
func (l *ledgerUseCase) Logout(ctx context.Context) error {
	account, ok := l.store.ActiveAccount()
	if err := l.store.SetActiveAccount(ctx, nil); err != nil {
		return err
	}
	if ok {
		logger.Log.Info("logout", zap.String("accountID", account.ID))
	}
	return nil
}

func (l *ledgerUseCase) CurrentAccount() (*domain.Account, error) {
	account, ok := l.store.ActiveAccount()
	if !ok {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "no active account")
	}
	return account, nil
}

// UploadVideo 驗證 -> 檢查餘額 -> 建立影片 -> 扣免費額度或金幣
func (l *ledgerUseCase) UploadVideo(ctx context.Context, up domain.UploadVideoReq) (*domain.VideoPost, error) {
	account, err := l.CurrentAccount()
	if err != nil {
		return nil, err
	}

	externalID, ok := videoref.ExtractVideoID(up.URL)
	if !ok {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "url[%s] is not a recognised video link", up.URL)
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return nil, errprocess.Wrap(errprocess.ErrValidation, "title exceeds %d characters", domain.MaxTitleLength)
	}

	if !account.CanAffordUpload() {
		return nil, errprocess.Wrap(errprocess.ErrInsufficientBalance,
			"account[%s] needs %d coins to upload, has %d", account.ID, domain.UploadCost, account.Coins)
	}

	video, err := l.store.CreateVideo(ctx, account.ID, title, up.URL, externalID)
	if err != nil {
		return nil, err
	}

	if account.HasFreeUpload {
		if _, err := l.store.ConsumeFreeUploadCredit(ctx, account.ID); err != nil {
			return nil, err
		}
		l.events.Emit(ctx, domain.LedgerEvent{
			Type:      domain.EventVideoUploaded,
			AccountID: account.ID,
			VideoID:   video.ID,
			Balance:   account.Coins,
			Reason:    "free upload",
		})
		return video, nil
	}

	charged, err := l.store.AdjustBalance(ctx, account.ID, -domain.UploadCost)
	if err != nil {
		return nil, err
	}
	l.events.Emit(ctx, domain.LedgerEvent{
		Type:      domain.EventCoinsDebited,
		AccountID: account.ID,
		VideoID:   video.ID,
		Delta:     -domain.UploadCost,
		Balance:   charged.Coins,
		Reason:    "upload",
	})
	return video, nil
}

// Dashboard 餘額與自己影片的統計
func (l *ledgerUseCase) Dashboard(ctx context.Context) (*domain.DashboardRes, error) {
	account, err := l.CurrentAccount()
	if err != nil {
		return nil, err
	}

	videos := l.store.ListOwnedVideos(account.ID)
	res := &domain.DashboardRes{
		Account:    *account,
		VideoCount: len(videos),
		Videos:     videos,
	}
	for _, v := range videos {
		res.TotalViews += v.Views
		res.TotalLikes += v.Likes
		res.TotalSubscribes += v.Subscribes
	}
	if account.HasFreeUpload {
		res.FreeUploads = 1
	}
	return res, nil
}

// WatchableVideos 其他使用者的影片
func (l *ledgerUseCase) WatchableVideos(ctx context.Context) ([]domain.VideoPost, error) {
	account, err := l.CurrentAccount()
	if err != nil {
		return nil, err
	}
	return l.store.ListOtherVideos(account.ID), nil
}
