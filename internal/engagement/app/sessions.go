package app

import (
	"sync"
	"time"

	ledgerapp "watch_earn_service/internal/ledger/app"
	"watch_earn_service/internal/ledger/repository"
	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"

	"go.uber.org/zap"
)

// Sessions 持有目前登入帳號的 controller.
// Switching the active account stops the previous viewer's controller.
type Sessions struct {
	store    repository.LedgerStore
	events   *ledgerapp.EventSink
	interval time.Duration

	mu      sync.Mutex
	current Controller
}

// NewSessions tickInterval 0 disables automatic ticking
func NewSessions(store repository.LedgerStore, events *ledgerapp.EventSink, tickInterval time.Duration) *Sessions {
	return &Sessions{
		store:    store,
		events:   events,
		interval: tickInterval,
	}
}

// Current 取得 active account 的 controller, created on first use
func (s *Sessions) Current() (Controller, error) {
	account, ok := s.store.ActiveAccount()
	if !ok {
		return nil, errprocess.Wrap(errprocess.ErrNotFound, "no active account")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ViewerID() == account.ID {
		return s.current, nil
	}
	if s.current != nil {
		s.current.Stop()
	}
	s.current = NewController(account.ID, s.store, s.events, s.interval)
	logger.Log.Debug("engagement controller created", zap.String("viewerID", account.ID))
	return s.current, nil
}

// Release 停止並丟棄目前的 controller (logout / shutdown)
func (s *Sessions) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.current.Stop()
	logger.Log.Debug("engagement controller released", zap.String("viewerID", s.current.ViewerID()))
	s.current = nil
}
