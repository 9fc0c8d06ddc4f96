// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"os"
	"strconv"
)

// 鍵素材のラップ方式。
const (
	KeyWrapperKMS = "kms"
	KeyWrapperAge = "age"
)

// Config はアプリケーション設定を表す。
type Config struct {
	Port     string
	LogLevel string

	// バックエンド
	GraphQLURL      string
	APIToken        string
	EmailBucket     string
	TransientBucket string
	AWSRegion       string
	S3Endpoint      string
	IdentityID      string
	OwnerID         string

	// 鍵ストア
	KeyRingID      string
	KeystoreDSN    string
	KMSKeyName     string
	KeyWrapper     string
	KeyringService string

	// トレーシング
	GoogleCloudProject string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelServiceName    string
	OtelSamplingRate   float64
}

// Load は環境変数から設定を読み込む。
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		GraphQLURL:      os.Getenv("GRAPHQL_URL"),
		APIToken:        os.Getenv("API_TOKEN"),
		EmailBucket:     os.Getenv("EMAIL_BUCKET"),
		TransientBucket: os.Getenv("TRANSIENT_BUCKET"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		IdentityID:      os.Getenv("IDENTITY_ID"),
		OwnerID:         os.Getenv("OWNER_ID"),

		KeyRingID:      getEnv("KEY_RING_ID", "sealed-mail"),
		KeystoreDSN:    getEnv("KEYSTORE_DSN", "sqlite://keys.db"),
		KMSKeyName:     os.Getenv("KMS_KEY_NAME"),
		KeyWrapper:     getEnv("KEY_WRAPPER", KeyWrapperAge),
		KeyringService: getEnv("KEYRING_SERVICE", "sealed-mail"),

		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		OtelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:       getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName:    getEnv("OTEL_SERVICE_NAME", "sealed-mail"),
		OtelSamplingRate:   getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvFloat(key string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return f
}
