// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/richinex/arbiter/internal/idgen"
)

// Settings holds all application configuration.
type Settings struct {
	Storage StorageConfig
	Server  ServerConfig
	LLM     LLMConfig

	// IDStrategy names the generator for snippet and history record ids.
	IDStrategy string
}

// StorageConfig selects the persistence backend for the comparison state.
type StorageConfig struct {
	Backend  string
	Path     string
	RedisURL string
	Key      string
	Timeout  time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	MaxTokens   uint32
	Temperature float64
	Concurrency int
	Timeout     time.Duration
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o-mini", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings, loading values from environment variables.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New() (Settings, error) {
	provider := normalizeProvider(getEnv("ARBITER_PROVIDER", "openai"))
	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	storageTimeout, err := getEnvDuration("ARBITER_STORAGE_TIMEOUT", 5*time.Second)
	if err != nil {
		return Settings{}, err
	}

	shutdownTimeout, err := getEnvDuration("ARBITER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	concurrency, err := getEnvInt("LLM_CONCURRENCY", 4)
	if err != nil {
		return Settings{}, err
	}

	llmTimeout, err := getEnvDuration("LLM_TIMEOUT", 2*time.Minute)
	if err != nil {
		return Settings{}, err
	}

	idStrategy := strings.ToLower(getEnv("ARBITER_ID_STRATEGY", idgen.StrategyDefault))
	if _, err := idgen.ByName(idStrategy); err != nil {
		return Settings{}, fmt.Errorf("invalid value for ARBITER_ID_STRATEGY: %w", err)
	}

	return Settings{
		Storage: StorageConfig{
			Backend:  strings.ToLower(getEnv("ARBITER_BACKEND", "sqlite")),
			Path:     getEnv("ARBITER_PATH", DefaultDataDir()),
			RedisURL: getEnv("ARBITER_REDIS_URL", "redis://localhost:6379/0"),
			Key:      getEnv("ARBITER_STORAGE_KEY", ""),
			Timeout:  storageTimeout,
		},
		Server: ServerConfig{
			Addr:            getEnv("ARBITER_ADDR", ":8080"),
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  getEnvList("ARBITER_ALLOWED_ORIGINS"),
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       getEnv(info.modelEnv, info.defaultModel),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Concurrency: concurrency,
			Timeout:     llmTimeout,
		},
		IDStrategy: idStrategy,
	}, nil
}

// MustNew creates settings.
// Panics if environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// DefaultDataDir returns the directory used for on-disk backends when
// ARBITER_PATH is unset.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "arbiter")
	}
	return ".arbiter"
}

// NormalizeProvider converts provider aliases to canonical names.
func NormalizeProvider(provider string) string {
	return normalizeProvider(provider)
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the sorted list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

// getEnvDuration accepts Go duration strings ("3s") or bare milliseconds ("3000").
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
