package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/communityfeed/internal/flagx"
)

// dotEnvFile is read, when present, before the environment is consulted.
// Variables already set in the process environment win over the file.
var dotEnvFile = ".env"

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseEnv(config *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookup("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}
	if v, ok := lookup("GRPC_PORT"); ok {
		config.EndpointAddrGRPC = ":" + v
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("FRONTEND_URL"); ok {
		config.AllowedOrigins = flagx.SplitList(v)
	}
	if v, ok := lookup("SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SessionValidityDuration = d
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.MaxUploadBytes = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		config.LogFormat = v
	}
	if v, ok := lookup("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		config.OTLPEndpoint = v
	}
	if v, ok := lookup("S3_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
	if v, ok := lookup("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := lookup("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := lookup("S3_ACCESS_KEY"); ok {
		config.S3RootUser = v
	}
	if v, ok := lookup("S3_SECRET_KEY"); ok {
		config.S3RootPassword = v
	}
	if v, ok := lookup("S3_PUBLIC_URL"); ok {
		config.S3PublicBaseURL = v
	}
}
