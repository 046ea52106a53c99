package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// LikeReward 按讚獎勵
	LikeReward = 10
	// SubscribeReward 訂閱獎勵
	SubscribeReward = 15
	// WatchReward 觀看滿 WatchRewardThreshold 秒的獎勵
	WatchReward = 5
	// WatchRewardThreshold seconds of watch time before the watch reward can be claimed
	WatchRewardThreshold = 180
)

// EngagementRecord 一次觀看互動的結果, persisted as a "watch session"
type EngagementRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	VideoID       string    `json:"videoId"`
	WatchTime     int       `json:"watchTime"`
	HasLiked      bool      `json:"hasLiked"`
	HasSubscribed bool      `json:"hasSubscribed"`
	CoinsEarned   int       `json:"coinsEarned"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate check a decoded record
func (e *EngagementRecord) Validate() error {
	switch {
	case e.ID == "":
		return errors.New("engagement id is empty")
	case e.UserID == "" || e.VideoID == "":
		return fmt.Errorf("engagement[%s] missing viewer or video", e.ID)
	case e.WatchTime < 0:
		return fmt.Errorf("engagement[%s] has negative watch time", e.ID)
	case e.CoinsEarned < 0:
		return fmt.Errorf("engagement[%s] has negative coins", e.ID)
	}
	return nil
}
