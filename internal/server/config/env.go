package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envConfig maps environment variables onto Config. Variables that are not
// set leave the current value untouched.
type envConfig struct {
	HTTPAddr                 string        `env:"HTTP_ADDR"`
	GRPCAddr                 string        `env:"GRPC_ADDR"`
	DatabaseDSN              string        `env:"DATABASE_URL"`
	SecretKey                string        `env:"JWT_SECRET_KEY"`
	SigningAlgorithm         string        `env:"JWT_ALGORITHM"`
	AccessTokenExpireMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	BcryptCost               int           `env:"BCRYPT_COST"`
	SuperadminPolicy         string        `env:"SUPERADMIN_POLICY"`
	LogLevel                 string        `env:"LOG_LEVEL"`
	ShutdownTimeout          time.Duration `env:"SHUTDOWN_TIMEOUT"`
	S3RootUser               string        `env:"S3_ROOT_USER"`
	S3RootPassword           string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket                 string        `env:"S3_BUCKET"`
	S3Region                 string        `env:"S3_REGION"`
	S3BaseEndpoint           string        `env:"S3_BASE_ENDPOINT"`
	AvatarURLTTL             time.Duration `env:"AVATAR_URL_TTL"`
}

// parseEnv loads .env files (missing files are ignored) and overlays the
// process environment onto config.
func parseEnv(config *Config, dotenvFiles ...string) error {
	if err := godotenv.Load(dotenvFiles...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return err
		}
	}

	e := envConfig{
		HTTPAddr:                 config.HTTPAddr,
		GRPCAddr:                 config.GRPCAddr,
		DatabaseDSN:              config.DatabaseDSN,
		SecretKey:                config.SecretKey,
		SigningAlgorithm:         config.SigningAlgorithm,
		AccessTokenExpireMinutes: int(config.AccessTokenValidityDuration / time.Minute),
		BcryptCost:               config.BcryptCost,
		SuperadminPolicy:         config.SuperadminPolicy,
		LogLevel:                 config.LogLevel,
		ShutdownTimeout:          config.ShutdownTimeout,
		S3RootUser:               config.S3RootUser,
		S3RootPassword:           config.S3RootPassword,
		S3Bucket:                 config.S3Bucket,
		S3Region:                 config.S3Region,
		S3BaseEndpoint:           config.S3BaseEndpoint,
		AvatarURLTTL:             config.AvatarURLValidityDuration,
	}
	minutesBefore := e.AccessTokenExpireMinutes

	if err := env.Parse(&e); err != nil {
		return err
	}

	config.HTTPAddr = e.HTTPAddr
	config.GRPCAddr = e.GRPCAddr
	config.DatabaseDSN = e.DatabaseDSN
	config.SecretKey = e.SecretKey
	config.SigningAlgorithm = e.SigningAlgorithm
	if e.AccessTokenExpireMinutes != minutesBefore {
		config.AccessTokenValidityDuration = time.Duration(e.AccessTokenExpireMinutes) * time.Minute
	}
	config.BcryptCost = e.BcryptCost
	config.SuperadminPolicy = e.SuperadminPolicy
	config.LogLevel = e.LogLevel
	config.ShutdownTimeout = e.ShutdownTimeout
	config.S3RootUser = e.S3RootUser
	config.S3RootPassword = e.S3RootPassword
	config.S3Bucket = e.S3Bucket
	config.S3Region = e.S3Region
	config.S3BaseEndpoint = e.S3BaseEndpoint
	config.AvatarURLValidityDuration = e.AvatarURLTTL

	return nil
}
