package app

import (
	"context"
	"encoding/json"
	"time"

	"watch_earn_service/internal/ledger/domain"
	"watch_earn_service/pkg/database"
	"watch_earn_service/pkg/logger"

	"go.uber.org/zap"
)

// EventSink 將帳本事件送到外部 feed; failures are logged, never returned
type EventSink struct {
	pub database.EventPublisher
	now func() time.Time
}

// NewEventSink nil pub drops every event
func NewEventSink(pub database.EventPublisher) *EventSink {
	if pub == nil {
		pub = database.NewNopPublisher()
	}
	return &EventSink{pub: pub, now: time.Now}
}

// Emit publish ev keyed by its account
func (e *EventSink) Emit(ctx context.Context, ev domain.LedgerEvent) {
	if e == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("marshal ledger event", zap.Error(err))
		return
	}
	if err := e.pub.Publish(ctx, ev.AccountID, data); err != nil {
		logger.Log.Warn("publish ledger event failed",
			zap.String("type", string(ev.Type)),
			zap.String("accountID", ev.AccountID),
			zap.Error(err),
		)
		return
	}
	logger.Log.Debug("ledger event", zap.String("type", string(ev.Type)), zap.String("accountID", ev.AccountID))
}
