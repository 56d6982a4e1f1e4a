package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysOnlySetVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("SUPERADMIN_POLICY", PolicyProtectTarget)
	t.Setenv("AVATAR_URL_TTL", "5m")

	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), "absent.env")))

	assert.Equal(t, "postgres://env/db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, PolicyProtectTarget, cfg.SuperadminPolicy)
	assert.Equal(t, 5*time.Minute, cfg.AvatarURLValidityDuration)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "HS256", cfg.SigningAlgorithm)
}

func TestParseEnv_KeepsSubMinuteDefaultWhenUnset(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenValidityDuration = 90 * time.Second

	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
}

func TestParseEnv_ReadsDotenvFile(t *testing.T) {
	path := writeTempFile(t, ".env", "JWT_ALGORITHM=HS512\nS3_BUCKET=faces\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_ALGORITHM")
		_ = os.Unsetenv("S3_BUCKET")
	})

	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg, path))
	assert.Equal(t, "HS512", cfg.SigningAlgorithm)
	assert.Equal(t, "faces", cfg.S3Bucket)
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("BCRYPT_COST", "lots")

	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Error(t, parseEnv(cfg, filepath.Join(t.TempDir(), "absent.env")))
}
