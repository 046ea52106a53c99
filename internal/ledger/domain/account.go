package domain

import (
	"errors"
	"time"
)

const (
	// StartingCoins 新帳號的初始金幣
	StartingCoins = 50
	// UploadCost 無免費額度時上傳一支影片的花費
	UploadCost = 5
)

// Account 用來表示使用者 (帳號與金幣餘額)
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Coins     int       `json:"coins"`
	CreatedAt time.Time `json:"createdAt"`
	// HasFreeUpload one-time upload cost waiver, consumed by the first upload
	HasFreeUpload bool `json:"hasFreePlatform"`
}

// CanAffordUpload 免費額度或餘額足夠
func (a *Account) CanAffordUpload() bool {
	return a.HasFreeUpload || a.Coins >= UploadCost
}

// Validate check a decoded account
func (a *Account) Validate() error {
	if a.ID == "" {
		return errors.New("account id is empty")
	}
	if a.Email == "" {
		return errors.New("account email is empty")
	}
	return nil
}
