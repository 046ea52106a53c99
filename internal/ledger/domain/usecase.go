package domain

import "time"

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// DashboardRes usecase dashboard response
type DashboardRes struct {
	Account         Account     `json:"account"`
	VideoCount      int         `json:"videoCount"`
	TotalViews      int         `json:"totalViews"`
	TotalLikes      int         `json:"totalLikes"`
	TotalSubscribes int         `json:"totalSubscribes"`
	FreeUploads     int         `json:"freeUploads"`
	Videos          []VideoPost `json:"videos"`
}

// EventType 帳本事件種類
type EventType string

const (
	// EventAccountCreated 新帳號
	EventAccountCreated EventType = "account_created"
	// EventVideoUploaded 上傳影片
	EventVideoUploaded EventType = "video_uploaded"
	// EventCoinsCredited 互動獎勵入帳
	EventCoinsCredited EventType = "coins_credited"
	// EventCoinsDebited 上傳扣款
	EventCoinsDebited EventType = "coins_debited"
)

// LedgerEvent one coin movement or upload, published to the event feed
type LedgerEvent struct {
	Type       EventType `json:"type"`
	AccountID  string    `json:"accountId"`
	VideoID    string    `json:"videoId,omitempty"`
	Delta      int       `json:"delta"`
	Balance    int       `json:"balance"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
