package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/communityfeed/internal/flagx"
	"github.com/dmitrijs2005/communityfeed/internal/timex"
)

// JsonConfig mirrors Config for file-based configuration. Absent keys leave
// the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	RequestTimeout          *timex.Duration `json:"request_timeout"`
	HealthProbeInterval     *timex.Duration `json:"health_probe_interval"`
	FeedDefaultLimit        *int            `json:"feed_default_limit"`
	FeedMaxLimit            *int            `json:"feed_max_limit"`
	MaxUploadBytes          *int64          `json:"max_upload_bytes"`
	AllowedOrigins          []string        `json:"allowed_origins"`
	LogLevel                *string         `json:"log_level"`
	LogFormat               *string         `json:"log_format"`
	OTLPEndpoint            *string         `json:"otlp_endpoint"`
	DBMaxOpenConns          *int            `json:"db_max_open_conns"`
	DBMaxIdleConns          *int            `json:"db_max_idle_conns"`
	DBConnMaxLifetime       *timex.Duration `json:"db_conn_max_lifetime"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL         *string         `json:"s3_public_base_url"`
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDurationIf(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setDurationIf(&config.SessionValidityDuration, c.SessionValidityDuration)
	setDurationIf(&config.RequestTimeout, c.RequestTimeout)
	setDurationIf(&config.HealthProbeInterval, c.HealthProbeInterval)
	setIf(&config.FeedDefaultLimit, c.FeedDefaultLimit)
	setIf(&config.FeedMaxLimit, c.FeedMaxLimit)
	setIf(&config.MaxUploadBytes, c.MaxUploadBytes)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.OTLPEndpoint, c.OTLPEndpoint)
	setIf(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setIf(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setDurationIf(&config.DBConnMaxLifetime, c.DBConnMaxLifetime)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.S3PublicBaseURL, c.S3PublicBaseURL)
}
