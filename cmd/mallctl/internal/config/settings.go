package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/supermal/mallpass/pkg/sdk"
)

// Configuration keys. Nested keys map to MALLPASS_<SECTION>_<NAME> in the environment.
const (
	KeyPublicURL      = "public_url"
	KeyMemberURL      = "member_url"
	KeyStateFile      = "state_file"
	KeyLogLevel       = "log_level"
	KeyCacheSize      = "cache.size"
	KeyPersistCache   = "cache.persist"
	KeyPublicTimeout  = "public.timeout"
	KeyRefreshAfter   = "public.refresh_after"
	KeyMaxStale       = "public.max_stale"
	KeyMemberTimeout  = "member.timeout"
	KeyFallbackWindow = "member.fallback_window"
)

const envPrefix = "MALLPASS"

// Settings is the resolved mallctl configuration.
type Settings struct {
	PublicURL      string
	MemberURL      string
	StateFile      string
	LogLevel       string
	CacheSize      int
	PersistCache   bool
	PublicTimeout  time.Duration
	RefreshAfter   time.Duration
	MaxStale       time.Duration
	MemberTimeout  time.Duration
	FallbackWindow time.Duration
	// ConfigFile is the file that was read, empty when none was.
	ConfigFile string
}

// NewViper returns a viper instance with mallctl defaults and MALLPASS_* env binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := sdk.DefaultConfig()
	v.SetDefault(KeyPublicURL, def.PublicURL)
	v.SetDefault(KeyMemberURL, def.MemberURL)
	v.SetDefault(KeyStateFile, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyCacheSize, def.CacheSize)
	v.SetDefault(KeyPersistCache, def.PersistCache)
	v.SetDefault(KeyPublicTimeout, def.PublicPolicy.Timeout)
	v.SetDefault(KeyRefreshAfter, def.PublicPolicy.RefreshAfter)
	v.SetDefault(KeyMaxStale, def.PublicPolicy.MaxStale)
	v.SetDefault(KeyMemberTimeout, def.MemberPolicy.Timeout)
	v.SetDefault(KeyFallbackWindow, def.MemberPolicy.FallbackWindow)
	return v
}

// DefaultConfigPath returns ~/.mallpass/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mallpass", "config.yaml"), nil
}

// Load resolves settings from defaults, the config file, MALLPASS_* variables and any
// flags already bound to v, in increasing precedence. An explicit configFile must exist;
// the default one is optional.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	path := configFile
	if path == "" {
		if p, err := DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if configFile != "" || !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			path = ""
		}
	}

	s := &Settings{
		PublicURL:      strings.TrimSpace(v.GetString(KeyPublicURL)),
		MemberURL:      strings.TrimSpace(v.GetString(KeyMemberURL)),
		StateFile:      v.GetString(KeyStateFile),
		LogLevel:       v.GetString(KeyLogLevel),
		CacheSize:      v.GetInt(KeyCacheSize),
		PersistCache:   v.GetBool(KeyPersistCache),
		PublicTimeout:  v.GetDuration(KeyPublicTimeout),
		RefreshAfter:   v.GetDuration(KeyRefreshAfter),
		MaxStale:       v.GetDuration(KeyMaxStale),
		MemberTimeout:  v.GetDuration(KeyMemberTimeout),
		FallbackWindow: v.GetDuration(KeyFallbackWindow),
		ConfigFile:     path,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the backend URLs and durations.
func (s *Settings) Validate() error {
	for field, raw := range map[string]string{KeyPublicURL: s.PublicURL, KeyMemberURL: s.MemberURL} {
		u, err := url.Parse(raw)
		if err != nil || raw == "" || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &sdk.ValidationError{Field: field, Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", raw)}
		}
	}
	if s.CacheSize <= 0 {
		return &sdk.ValidationError{Field: KeyCacheSize, Reason: "must be positive"}
	}
	if s.PublicTimeout <= 0 || s.MemberTimeout <= 0 {
		return &sdk.ValidationError{Field: "timeout", Reason: "must be positive"}
	}
	return nil
}

// SDKConfig maps the settings onto the SDK client config.
func (s *Settings) SDKConfig() sdk.Config {
	cfg := sdk.DefaultConfig()
	cfg.PublicURL = s.PublicURL
	cfg.MemberURL = s.MemberURL
	cfg.CacheSize = s.CacheSize
	cfg.PersistCache = s.PersistCache

	cfg.PublicPolicy.Timeout = s.PublicTimeout
	cfg.PublicPolicy.RefreshAfter = s.RefreshAfter
	cfg.PublicPolicy.MaxStale = s.MaxStale
	cfg.MemberPolicy.Timeout = s.MemberTimeout
	cfg.MemberPolicy.FallbackWindow = s.FallbackWindow
	return cfg
}
