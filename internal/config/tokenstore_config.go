package config

import (
	"os"
	"path/filepath"
	"strings"
)

type TokenStoreKind string

const (
	TokenStoreFile   TokenStoreKind = "file"
	TokenStoreRedis  TokenStoreKind = "redis"
	TokenStoreMemory TokenStoreKind = "memory"
)

type TokenStoreConfig interface {
	GetTokenStore() TokenStoreKind
	GetTokenFile() string
	GetTokenStoreKey() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type TokenStore struct{}

var _ TokenStoreConfig = TokenStore{}

func (TokenStore) GetTokenStore() TokenStoreKind {
	return TokenStoreKind(strings.ToLower(GetEnv("TOKEN_STORE", string(TokenStoreFile))))
}

// GetTokenFile defaults to ~/.coursectl/auth_tokens.json
func (TokenStore) GetTokenFile() string {
	if f := os.Getenv("TOKEN_FILE"); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "auth_tokens.json"
	}
	return filepath.Join(home, ".coursectl", "auth_tokens.json")
}

// GetTokenStoreKey is a hex encoded 32 byte key. Empty stores the file in plain JSON.
func (TokenStore) GetTokenStoreKey() string {
	return GetEnv("TOKEN_STORE_KEY", "")
}

func (TokenStore) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (TokenStore) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "coursectl:")
}
