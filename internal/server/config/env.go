package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by parseEnv.
const EnvPrefix = "MEDIABOX_"

// loadDotEnv is a test seam. godotenv never overrides variables that are
// already set in the process environment.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays Config with MEDIABOX_* environment variables, after
// loading a .env file from the working directory if one exists.
//
// Recognized variables:
//
//	MEDIABOX_HTTP_ADDR, MEDIABOX_GRPC_ADDR, MEDIABOX_DATABASE_DSN,
//	MEDIABOX_SECRET_KEY, MEDIABOX_ACCESS_TOKEN_TTL (duration),
//	MEDIABOX_BCRYPT_COST, MEDIABOX_USER_CACHE_TTL (duration),
//	MEDIABOX_MAX_UPLOAD_SIZE (bytes), MEDIABOX_S3_ROOT_USER,
//	MEDIABOX_S3_ROOT_PASSWORD, MEDIABOX_S3_BUCKET, MEDIABOX_S3_REGION,
//	MEDIABOX_S3_BASE_ENDPOINT, MEDIABOX_LOG_LEVEL
//
// Malformed numeric or duration values cause a panic, like the other loaders.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envInt("BCRYPT_COST", &config.BcryptCost)
	envDuration("USER_CACHE_TTL", &config.UserCacheTTL)
	envInt64("MAX_UPLOAD_SIZE", &config.MaxUploadSize)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envInt64(name string, dst *int64) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}
