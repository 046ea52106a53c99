package domain

// Action websocket request action
type Action string

const (
	// SelectVideo websocket action select_video
	SelectVideo Action = "select_video"
	// Like websocket action like
	Like Action = "like"
	// Subscribe websocket action subscribe
	Subscribe Action = "subscribe"
	// ClaimWatchReward websocket action claim_watch_reward
	ClaimWatchReward Action = "claim_watch_reward"
	// GetState websocket action get_state
	GetState Action = "get_state"

	// NotifyTick server push after every tick
	NotifyTick Action = "notify_tick"
)

// WSRequest websocket Request
type WSRequest struct {
	Action  string `json:"action"`
	VideoID string `json:"video_id"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	State   *State `json:"state,omitempty"`
	Error   string `json:"error,omitempty"`
}
