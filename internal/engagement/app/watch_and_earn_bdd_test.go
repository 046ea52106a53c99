package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	ledgerapp "watch_earn_service/internal/ledger/app"
	ledger "watch_earn_service/internal/ledger/domain"
	"watch_earn_service/internal/ledger/repository"
	"watch_earn_service/pkg/database"
	errprocess "watch_earn_service/pkg/err"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Paths:    []string{"./featureFiles"}, // 指向 feature 檔相對路徑
			Format:   "pretty",
			Output:   os.Stdout,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

var errKinds = map[string]error{
	"duplicate email":      errprocess.ErrDuplicateEmail,
	"insufficient balance": errprocess.ErrInsufficientBalance,
	"validation":           errprocess.ErrValidation,
	"not found":            errprocess.ErrNotFound,
}

// watchWorld 每個 scenario 一份乾淨的 store
type watchWorld struct {
	ctx      context.Context
	store    repository.LedgerStore
	ledgerUC ledgerapp.LedgerUseCase
	sessions *Sessions
	lastErr  error
}

func newWatchWorld() (*watchWorld, error) {
	ctx := context.Background()
	store, err := repository.NewLedgerStore(ctx, database.NewMemoryStorage())
	if err != nil {
		return nil, err
	}
	events := ledgerapp.NewEventSink(nil)
	return &watchWorld{
		ctx:      ctx,
		store:    store,
		ledgerUC: ledgerapp.NewLedgerUseCase(store, events),
		sessions: NewSessions(store, events, 0),
	}, nil
}

// InitializeScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeScenario(s *godog.ScenarioContext) {
	var w *watchWorld

	s.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		var err error
		w, err = newWatchWorld()
		return ctx, err
	})
	s.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		w.sessions.Release()
		return ctx, nil
	})

	s.Step(`^"([^"]*)" signs up$`, func(email string) error {
		_, err := w.ledgerUC.Signup(w.ctx, email, "pw", email)
		return err
	})
	s.Step(`^"([^"]*)" signs up again$`, func(email string) error {
		_, w.lastErr = w.ledgerUC.Signup(w.ctx, email, "pw", email)
		return nil
	})
	s.Step(`^the active account uploads "([^"]*)" titled "([^"]*)"$`, func(url, title string) error {
		_, w.lastErr = w.ledgerUC.UploadVideo(w.ctx, ledger.UploadVideoReq{URL: url, Title: title})
		return nil
	})
	s.Step(`^the active account has no free upload and (\d+) coins$`, func(coins int) error {
		a, err := w.ledgerUC.CurrentAccount()
		if err != nil {
			return err
		}
		if _, err := w.store.ConsumeFreeUploadCredit(w.ctx, a.ID); err != nil {
			return err
		}
		_, err = w.store.AdjustBalance(w.ctx, a.ID, coins-a.Coins)
		return err
	})
	s.Step(`^the active balance is (\d+)$`, func(coins int) error {
		return w.activeBalanceIs(coins)
	})
	s.Step(`^the active balance is (\d+) and a free upload is available$`, func(coins int) error {
		return w.balanceAndCredit(coins, true)
	})
	s.Step(`^the active balance is (\d+) and no free upload is available$`, func(coins int) error {
		return w.balanceAndCredit(coins, false)
	})
	s.Step(`^the active account owns (\d+) videos$`, func(n int) error {
		dash, err := w.ledgerUC.Dashboard(w.ctx)
		if err != nil {
			return err
		}
		if dash.VideoCount != n {
			return fmt.Errorf("expected %d videos, got %d", n, dash.VideoCount)
		}
		return nil
	})
	s.Step(`^the (upload|signup) fails with "([^"]*)"$`, func(_, kind string) error {
		want, ok := errKinds[kind]
		if !ok {
			return fmt.Errorf("unknown error kind %q", kind)
		}
		if !errors.Is(w.lastErr, want) {
			return fmt.Errorf("expected %q error, got %v", kind, w.lastErr)
		}
		return nil
	})

	s.Step(`^the viewer selects the video titled "([^"]*)"$`, func(title string) error {
		v, err := w.videoByTitle(title)
		if err != nil {
			return err
		}
		ctrl, err := w.sessions.Current()
		if err != nil {
			return err
		}
		_, err = ctrl.SelectVideo(w.ctx, v.ID)
		return err
	})
	s.Step(`^the viewer likes the video$`, func() error {
		return w.act(func(c Controller) error { _, err := c.Like(w.ctx); return err })
	})
	s.Step(`^the viewer subscribes$`, func() error {
		return w.act(func(c Controller) error { _, err := c.Subscribe(w.ctx); return err })
	})
	s.Step(`^the viewer claims the watch reward$`, func() error {
		return w.act(func(c Controller) error { _, err := c.ClaimWatchReward(w.ctx); return err })
	})
	s.Step(`^the viewer watches for (\d+) seconds$`, func(n int) error {
		return w.act(func(c Controller) error { tickN(c, n); return nil })
	})
	s.Step(`^the video titled "([^"]*)" has (\d+) (views|likes|subscribes)$`, func(title string, n int, counter string) error {
		v, err := w.videoByTitle(title)
		if err != nil {
			return err
		}
		got := map[string]int{"views": v.Views, "likes": v.Likes, "subscribes": v.Subscribes}[counter]
		if got != n {
			return fmt.Errorf("expected %d %s, got %d", n, counter, got)
		}
		return nil
	})
}

func (w *watchWorld) act(f func(Controller) error) error {
	ctrl, err := w.sessions.Current()
	if err != nil {
		return err
	}
	return f(ctrl)
}

func (w *watchWorld) activeBalanceIs(coins int) error {
	a, err := w.ledgerUC.CurrentAccount()
	if err != nil {
		return err
	}
	if a.Coins != coins {
		return fmt.Errorf("expected balance %d, got %d", coins, a.Coins)
	}
	return nil
}

func (w *watchWorld) balanceAndCredit(coins int, free bool) error {
	if err := w.activeBalanceIs(coins); err != nil {
		return err
	}
	a, _ := w.ledgerUC.CurrentAccount()
	if a.HasFreeUpload != free {
		return fmt.Errorf("expected free upload %v, got %v", free, a.HasFreeUpload)
	}
	return nil
}

// videoByTitle 在所有帳號的影片中找標題
func (w *watchWorld) videoByTitle(title string) (*ledger.VideoPost, error) {
	a, err := w.ledgerUC.CurrentAccount()
	if err != nil {
		return nil, err
	}
	videos := append(w.store.ListOwnedVideos(a.ID), w.store.ListOtherVideos(a.ID)...)
	for i := range videos {
		if videos[i].Title == title {
			return &videos[i], nil
		}
	}
	return nil, fmt.Errorf("no video titled %q", title)
}
