package config

// WatchEarn definition watch_earn_service YAML structure
type WatchEarn struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`
	// TickSeconds watch timer interval in seconds, 0 disables the automatic ticker
	TickSeconds int `mapstructure:"tick_seconds"`
	// PprofAddr pprof listen address outside production, empty disables it
	PprofAddr string `mapstructure:"pprof_addr"`

	Storage StorageConfig `mapstructure:"storage"`
	Events  EventConfig   `mapstructure:"events"`
}

// StorageConfig definition the durable local storage backing the ledger
type StorageConfig struct {
	// Driver one of memory, file, redis, mongo, postgres, minio
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`

	Redis      RedisConfig    `mapstructure:"redis"`
	Mongo      DatabaseConfig `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
}

// EventConfig definition ledger event publisher
type EventConfig struct {
	// Driver one of none, kafka, rabbitmq
	Driver   string         `mapstructure:"driver"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	RedisDB  int    `mapstructure:"redis_db"`
	// UseSentinel read master name and sentinel addresses from .env
	UseSentinel bool `mapstructure:"use_sentinel"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	BucketName    string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP            string `mapstructure:"ip"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
