package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ LocalStorage = (*MinIOClient)(nil)

// MinIOClient definition minio client, also usable as LocalStorage
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		mc, err = NewMinioClient(d.Endpoint, d.User, d.Password, d.BucketName, d.UseSSL)
		if err == nil {
			log.Printf("minIO[%s] 連線成功 (嘗試 %d 次)", d.Endpoint, i)
			return mc, nil
		}

		log.Printf("minIO[%s] 連線失敗 (嘗試 %d/%d): %v", d.Endpoint, i, d.RetryCount, err)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return mc, err
}

// NewMinioClient create a new minio, the bucket is created when missing
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 失敗: %v", err)
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("檢查 bucket [%s] 失敗: %v", bucketName, err)
	}

	if !exists {
		if err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("建立 bucket [%s] 失敗: %v", bucketName, err)
		}
		log.Printf("Bucket [%s] 建立成功", bucketName)
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: bucketName,
	}, nil
}

func objectName(key string) string {
	return "local_storage/" + key + ".json"
}

// GetItem read the object for key, NoSuchKey means the item is absent
func (m *MinIOClient) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := m.Client.GetObject(ctx, m.BucketName, objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("取得物件失敗: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("讀取物件失敗: %v", err)
	}
	return data, true, nil
}

// SetItem put the whole item as a single object
func (m *MinIOClient) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := m.Client.PutObject(ctx, m.BucketName, objectName(key), bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// RemoveItem delete the object for key
func (m *MinIOClient) RemoveItem(ctx context.Context, key string) error {
	return m.Client.RemoveObject(ctx, m.BucketName, objectName(key), minio.RemoveObjectOptions{})
}

// Close minio client holds no connection to release
func (m *MinIOClient) Close() error {
	return nil
}
