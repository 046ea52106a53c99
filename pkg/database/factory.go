package database

import (
	"context"
	"fmt"
	"time"

	"watch_earn_service/pkg/config"
	"watch_earn_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// OpenStorage build the LocalStorage selected by cfg.Driver
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (LocalStorage, error) {
	logger.Log.Info("open local storage", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "memory":
		return NewMemoryStorage(), nil

	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "./data"
		}
		return NewFileStorage(dir)

	case "redis":
		var (
			client *redis.Client
			err    error
		)
		if cfg.Redis.UseSentinel {
			masterName, sentinels := config.GetRedisSetting()
			client, err = NewRedisFailoverClient(masterName, sentinels, cfg.Redis.Password, cfg.Redis.RedisDB)
		} else {
			client, err = NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.RedisDB)
		}
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(client, "watch_earn:"), nil

	case "mongo":
		m := cfg.Mongo
		uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", m.User, m.Password, m.Host, m.Port)
		db, err := NewMongoDB(ctx, Connection{
			ConnectStr:    uri,
			RetryCount:    m.RetryCount,
			RetryInterval: time.Duration(m.RetryInterval),
		}, m.Database)
		if err != nil {
			return nil, err
		}
		return NewMongoStorage(db), nil

	case "postgres":
		pg := cfg.PostgreSQL
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			pg.Host, pg.User, pg.Password, pg.Database, pg.Port)
		db, err := NewPGConnection(Connection{
			ConnectStr:    dsn,
			RetryCount:    pg.RetryCount,
			RetryInterval: time.Duration(pg.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		return NewGormStorage(db)

	case "minio":
		mc := cfg.MinIO
		client, err := NewMinIOConnection(MinIOConnection{
			Endpoint:      fmt.Sprintf("%s:%d", mc.Host, mc.Port),
			User:          mc.User,
			Password:      mc.Password,
			BucketName:    mc.BucketName,
			UseSSL:        mc.UseSSL,
			RetryCount:    mc.RetryCount,
			RetryInterval: time.Duration(mc.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenPublisher build the EventPublisher selected by cfg.Driver
func OpenPublisher(cfg config.EventConfig) (EventPublisher, error) {
	logger.Log.Info("open event publisher", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "", "none":
		return NewNopPublisher(), nil

	case "kafka":
		writer, err := NewKafkaWriterWithRetry(KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		return NewKafkaPublisher(writer), nil

	case "rabbitmq":
		r := cfg.RabbitMQ
		conn, err := ConnectRabbitMQWithRetry(Connection{
			ConnectStr:    fmt.Sprintf("amqp://%s:%s@%s:%s/", r.User, r.Password, r.IP, r.Port),
			RetryCount:    r.RetryCount,
			RetryInterval: time.Duration(r.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		ch, err := GetRabbitMQChannelWithRetry(conn, r.RetryCount, time.Duration(r.RetryInterval))
		if err != nil {
			conn.Close()
			return nil, err
		}
		return NewRabbitPublisher(NewRabbitRepository(ch), r.Queue)

	default:
		return nil, fmt.Errorf("unknown event driver %q", cfg.Driver)
	}
}
