package domain

import (
	ledger "watch_earn_service/internal/ledger/domain"
)

// Phase 觀看狀態
type Phase string

const (
	// Idle no video selected
	Idle Phase = "idle"
	// Watching video selected, timer running
	Watching Phase = "watching"
)

// State 目前觀看中影片的 session 快照
type State struct {
	ViewerID string `json:"viewerId"`
	Phase    Phase  `json:"phase"`
	// VideoID ledger id of the selected video, empty while idle
	VideoID            string `json:"videoId,omitempty"`
	WatchTime          int    `json:"watchTime"`
	HasLiked           bool   `json:"hasLiked"`
	HasSubscribed      bool   `json:"hasSubscribed"`
	WatchRewardClaimed bool   `json:"watchRewardClaimed"`
}

// IsWatching a video is selected
func (s State) IsWatching() bool {
	return s.Phase == Watching && s.VideoID != ""
}

// CanLike 尚未按讚
func (s State) CanLike() bool {
	return s.IsWatching() && !s.HasLiked
}

// CanSubscribe 尚未訂閱
func (s State) CanSubscribe() bool {
	return s.IsWatching() && !s.HasSubscribed
}

// CanClaimWatchReward 觀看達門檻且尚未領取
func (s State) CanClaimWatchReward() bool {
	return s.IsWatching() && !s.WatchRewardClaimed && s.WatchTime >= ledger.WatchRewardThreshold
}

// RemainingWatchSeconds seconds left before the watch reward unlocks
func (s State) RemainingWatchSeconds() int {
	if left := ledger.WatchRewardThreshold - s.WatchTime; left > 0 {
		return left
	}
	return 0
}
