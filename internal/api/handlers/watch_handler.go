package handlers

import (
	"context"

	"watch_earn_service/internal/engagement/app"
	"watch_earn_service/internal/engagement/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WatchHandler 觀看並賺取金幣
type WatchHandler struct {
	sessions  *app.Sessions
	websocket *app.WatchWebsocketHandler
}

// NewWatchHandler 建立新的 WatchHandler
func NewWatchHandler(sessions *app.Sessions) *WatchHandler {
	return &WatchHandler{
		sessions:  sessions,
		websocket: app.NewWatchWebsocketHandler(sessions),
	}
}

func (h *WatchHandler) run(c *fiber.Ctx, action func(context.Context, app.Controller) (domain.State, error)) error {
	ctrl, err := h.sessions.Current()
	if err != nil {
		return sendError(c, err)
	}
	state, err := action(c.UserContext(), ctrl)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

// Select 選擇影片開始觀看
func (h *WatchHandler) Select(c *fiber.Ctx) error {
	videoID := c.Params("videoID")
	return h.run(c, func(ctx context.Context, ctrl app.Controller) (domain.State, error) {
		return ctrl.SelectVideo(ctx, videoID)
	})
}

// Like 按讚 (+10, once)
func (h *WatchHandler) Like(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, ctrl app.Controller) (domain.State, error) {
		return ctrl.Like(ctx)
	})
}

// Subscribe 訂閱 (+15, once)
func (h *WatchHandler) Subscribe(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, ctrl app.Controller) (domain.State, error) {
		return ctrl.Subscribe(ctx)
	})
}

// Claim 領取觀看獎勵 (+5 after 180s)
func (h *WatchHandler) Claim(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, ctrl app.Controller) (domain.State, error) {
		return ctrl.ClaimWatchReward(ctx)
	})
}

// State 目前觀看狀態
func (h *WatchHandler) State(c *fiber.Ctx) error {
	return h.run(c, func(_ context.Context, ctrl app.Controller) (domain.State, error) {
		return ctrl.State(), nil
	})
}

// Stop 停止觀看
func (h *WatchHandler) Stop(c *fiber.Ctx) error {
	return h.run(c, func(_ context.Context, ctrl app.Controller) (domain.State, error) {
		ctrl.Stop()
		return ctrl.State(), nil
	})
}

// UpgradeCheck only websocket upgrades reach the ws route
func (h *WatchHandler) UpgradeCheck(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Websocket 推送每秒的觀看進度
func (h *WatchHandler) Websocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.websocket.HandleConnection(context.Background(), conn)
	})
}
