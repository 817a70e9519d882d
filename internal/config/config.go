package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "imagemail"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
)

const redacted = "[redacted]"

// Config contains search defaults and the credentials for the search API
// and the mail relay. It is loaded once at startup and passed by value.
type Config struct {
	Source          string `json:"source"`
	DefaultCount    int    `json:"default_count"`
	MaxCount        int    `json:"max_count"`
	FileType        string `json:"file_type"`
	ImageSize       string `json:"image_size"`
	Safety          string `json:"safety"`
	AllowEmpty      bool   `json:"allow_empty"`
	MaxImageBytes   int64  `json:"max_image_bytes"`
	DownloadTimeout int    `json:"download_timeout_seconds"`

	Google GoogleConfig `json:"google"`
	SMTP   SMTPConfig   `json:"smtp"`
}

type GoogleConfig struct {
	APIKey   string `json:"api_key"`
	EngineID string `json:"cx"`
	Endpoint string `json:"endpoint,omitempty"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`

	// TimeoutSeconds bounds the whole SMTP session.
	TimeoutSeconds int `json:"timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Source:          envString("IMAGEMAIL_SOURCE", "google"),
		DefaultCount:    envInt("IMAGEMAIL_DEFAULT_COUNT", 10),
		MaxCount:        envInt("IMAGEMAIL_MAX_COUNT", 100),
		FileType:        envString("IMAGEMAIL_FILE_TYPE", "jpg"),
		ImageSize:       envString("IMAGEMAIL_IMAGE_SIZE", "medium"),
		Safety:          envString("IMAGEMAIL_SAFETY", "high"),
		AllowEmpty:      envBool("IMAGEMAIL_ALLOW_EMPTY", true),
		MaxImageBytes:   int64(envInt("IMAGEMAIL_MAX_IMAGE_BYTES", 20<<20)),
		DownloadTimeout: envInt("IMAGEMAIL_DOWNLOAD_TIMEOUT", 30),
		Google: GoogleConfig{
			APIKey:   envString("IMAGEMAIL_GOOGLE_API_KEY", ""),
			EngineID: envString("IMAGEMAIL_GOOGLE_CX", ""),
			Endpoint: envString("IMAGEMAIL_GOOGLE_ENDPOINT", ""),
		},
		SMTP: SMTPConfig{
			Host:     envString("IMAGEMAIL_SMTP_HOST", "smtp.gmail.com"),
			Port:     envInt("IMAGEMAIL_SMTP_PORT", 587),
			Username: envString("IMAGEMAIL_SMTP_USERNAME", ""),
			Password: envString("IMAGEMAIL_SMTP_PASSWORD", ""),
			From:     envString("IMAGEMAIL_SMTP_FROM", ""),
			Subject:  envString("IMAGEMAIL_SMTP_SUBJECT", "Downloaded Images"),
			Body:     envString("IMAGEMAIL_SMTP_BODY", "Here are the images you requested in a ZIP file."),

			TimeoutSeconds: envInt("IMAGEMAIL_SMTP_TIMEOUT", 30),
		},
	}
}

// Sender is the From address, falling back to the SMTP username.
func (s SMTPConfig) Sender() string {
	if strings.TrimSpace(s.From) != "" {
		return s.From
	}
	return s.Username
}

func (s SMTPConfig) TimeoutDuration() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (c Config) DownloadTimeoutDuration() time.Duration {
	if c.DownloadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.DownloadTimeout) * time.Second
}

// Redacted returns a copy with every secret masked.
func (c Config) Redacted() Config {
	out := c
	out.Google.APIKey = mask(c.Google.APIKey)
	out.SMTP.Password = mask(c.SMTP.Password)
	return out
}

// MarshalZerologObject logs the config without secrets.
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	r := c.Redacted()
	e.Str("source", r.Source).
		Int("default_count", r.DefaultCount).
		Int("max_count", r.MaxCount).
		Str("file_type", r.FileType).
		Str("image_size", r.ImageSize).
		Str("safety", r.Safety).
		Bool("allow_empty", r.AllowEmpty).
		Str("google_api_key", r.Google.APIKey).
		Str("google_cx", r.Google.EngineID).
		Str("smtp_host", r.SMTP.Host).
		Int("smtp_port", r.SMTP.Port).
		Str("smtp_username", r.SMTP.Username).
		Str("smtp_password", r.SMTP.Password)
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return redacted
}

func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("IMAGEMAIL_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing or blank file yields the
// defaults. Environment variables win over the file for secrets, so a shared
// config file never has to carry them.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applySecretEnv(&cfg)
	return cfg, nil
}

func applySecretEnv(cfg *Config) {
	if v := envString("IMAGEMAIL_GOOGLE_API_KEY", ""); v != "" {
		cfg.Google.APIKey = v
	}
	if v := envString("IMAGEMAIL_GOOGLE_CX", ""); v != "" {
		cfg.Google.EngineID = v
	}
	if v := envString("IMAGEMAIL_SMTP_USERNAME", ""); v != "" {
		cfg.SMTP.Username = v
	}
	if v := envString("IMAGEMAIL_SMTP_PASSWORD", ""); v != "" {
		cfg.SMTP.Password = v
	}
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, withoutSecrets(DefaultConfig())); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

// withoutSecrets blanks credentials picked up from the environment so Init
// never persists them.
func withoutSecrets(cfg Config) Config {
	cfg.Google.APIKey = ""
	cfg.SMTP.Password = ""
	return cfg
}

// config.json may hold credentials, hence 0600.
func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("IMAGEMAIL_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
