package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxTitleLength 標題字數上限
const MaxTitleLength = 100

// CounterKind names one of a video's engagement counters
type CounterKind string

const (
	// CounterView 瀏覽次數
	CounterView CounterKind = "view"
	// CounterLike 按讚次數
	CounterLike CounterKind = "like"
	// CounterSubscribe 訂閱次數
	CounterSubscribe CounterKind = "subscribe"
)

// VideoPost 定義上傳的外部影片連結
type VideoPost struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	URL        string    `json:"youtubeUrl"`
	VideoID    string    `json:"videoId"`
	UploadedAt time.Time `json:"uploadedAt"`
	Views      int       `json:"views"`
	Likes      int       `json:"likes"`
	Subscribes int       `json:"subscribes"`
}

// Increment bump the named counter by one
func (v *VideoPost) Increment(kind CounterKind) error {
	switch kind {
	case CounterView:
		v.Views++
	case CounterLike:
		v.Likes++
	case CounterSubscribe:
		v.Subscribes++
	default:
		return fmt.Errorf("unknown counter %q", kind)
	}
	return nil
}

// Validate check a decoded video
func (v *VideoPost) Validate() error {
	switch {
	case v.ID == "":
		return errors.New("video id is empty")
	case v.UserID == "":
		return fmt.Errorf("video[%s] owner is empty", v.ID)
	case v.VideoID == "":
		return fmt.Errorf("video[%s] external id is empty", v.ID)
	case utf8.RuneCountInString(v.Title) > MaxTitleLength:
		return fmt.Errorf("video[%s] title exceeds %d characters", v.ID, MaxTitleLength)
	case v.Views < 0 || v.Likes < 0 || v.Subscribes < 0:
		return fmt.Errorf("video[%s] has a negative counter", v.ID)
	}
	return nil
}
