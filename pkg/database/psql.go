package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"watch_earn_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPGConnection create a new postgreSQL connection through gorm, with retry
func NewPGConnection(d Connection) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < d.RetryCount; i++ {
		db, err = gorm.Open(postgres.Open(d.ConnectStr), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			return db, nil
		}
		logger.Log.Warn(
			"Failed to connect to postgreSQL database, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(d.RetryInterval * time.Second)
	}

	if err == nil {
		err = errors.New("retry count must be positive")
	}
	return nil, err
}

// StorageItem 一個 local storage item 對應一列
type StorageItem struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName specifies the table name
func (StorageItem) TableName() string {
	return "local_storage"
}

type gormStorage struct {
	db *gorm.DB
}

// NewGormStorage migrate the local_storage table and wrap it as LocalStorage
func NewGormStorage(db *gorm.DB) (LocalStorage, error) {
	if err := db.AutoMigrate(&StorageItem{}); err != nil {
		return nil, fmt.Errorf("資料表遷移失敗: %w", err)
	}
	return &gormStorage{db: db}, nil
}

func (g *gormStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var item StorageItem
	err := g.db.WithContext(ctx).First(&item, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get item[%s]: %w", key, err)
	}
	return item.Value, true, nil
}

// SetItem Save 以主鍵 upsert
func (g *gormStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return g.db.WithContext(ctx).Save(&StorageItem{Key: key, Value: value}).Error
}

func (g *gormStorage) RemoveItem(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&StorageItem{}, "key = ?", key).Error
}

func (g *gormStorage) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
