package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"watch_earn_service/internal/engagement/domain"
	"watch_earn_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const pingPeriod = 30 * time.Second

// WatchWebsocketHandler 推送觀看進度並接收互動 action
type WatchWebsocketHandler struct {
	sessions *Sessions
}

// NewWatchWebsocketHandler create WatchWebsocketHandler
func NewWatchWebsocketHandler(sessions *Sessions) *WatchWebsocketHandler {
	return &WatchWebsocketHandler{sessions: sessions}
}

// wsConn 序列化寫入, websocket.Conn allows one concurrent writer
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(resp domain.WSResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("websocket marshal", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Log.Warn("websocket write", zap.Error(err))
	}
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.PingMessage, []byte("ping"))
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *WatchWebsocketHandler) HandleConnection(ctx context.Context, raw *websocket.Conn) {
	conn := &wsConn{Conn: raw}

	ctrl, err := h.sessions.Current()
	if err != nil {
		conn.send(domain.WSResponse{Action: string(domain.GetState), Error: err.Error()})
		_ = raw.Close()
		return
	}

	viewerID := ctrl.ViewerID()
	updates, cancelUpdates := ctrl.Updates()
	ticker := time.NewTicker(pingPeriod)
	ctxClose, cancel := context.WithCancel(ctx)

	defer func() {
		ticker.Stop()
		cancelUpdates()
		cancel()
		logger.Log.Info("websocket close", zap.String("viewerID", viewerID))
		_ = raw.Close()
	}()

	//client發出close
	raw.SetCloseHandler(func(code int, text string) error {
		logger.Log.Info("websocket closed by client", zap.Int("code", code), zap.String("viewerID", viewerID))
		return nil
	})

	state := ctrl.State()
	conn.send(domain.WSResponse{Action: string(domain.GetState), Success: true, State: &state})

	// 推送每次 tick 與互動後的狀態, 並定期 ping
	go func() {
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				conn.send(domain.WSResponse{Action: string(domain.NotifyTick), Success: true, State: &st})
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					logger.Log.Warn("websocket ping", zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("connection closed", zap.String("viewerID", viewerID))
			} else {
				//直接斷線 1006
				logger.Log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			conn.send(domain.WSResponse{Error: "unsupported message type"})
			continue
		}
		conn.send(h.execAction(ctxClose, ctrl, message))
	}
}

func (h *WatchWebsocketHandler) execAction(ctx context.Context, ctrl Controller, msg []byte) domain.WSResponse {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return domain.WSResponse{Error: "invalid request"}
	}

	var (
		state domain.State
		err   error
	)
	switch domain.Action(req.Action) {
	case domain.SelectVideo:
		state, err = ctrl.SelectVideo(ctx, req.VideoID)
	case domain.Like:
		state, err = ctrl.Like(ctx)
	case domain.Subscribe:
		state, err = ctrl.Subscribe(ctx)
	case domain.ClaimWatchReward:
		state, err = ctrl.ClaimWatchReward(ctx)
	case domain.GetState:
		state = ctrl.State()
	default:
		return domain.WSResponse{Action: req.Action, Error: "unknown action"}
	}

	resp := domain.WSResponse{Action: req.Action, Success: err == nil, State: &state}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
