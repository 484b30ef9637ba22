package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miguelmarques1/church-web/pkg/logging"
)

const (
	DefaultConfigPath = "/etc/church"
	ConfigFileName    = "church.yml"

	// MinTokenSecretLength is the minimum length of CHURCH_TOKEN_SECRET in bytes.
	MinTokenSecretLength = 32
)

// ChurchConfig holds all church-web service configuration settings
type ChurchConfig struct {
	// ListenAddress is the interface the HTTP server binds to
	ListenAddress string `yaml:"listen_address" json:"listen_address"`

	// Port is the HTTP server port
	Port int `yaml:"port" json:"port"`

	// PolicyPath is the permission policy file; empty means the built-in policy
	PolicyPath string `yaml:"policy_path" json:"policy_path"`

	// WatchPolicy reloads the policy file when it changes
	WatchPolicy bool `yaml:"watch_policy" json:"watch_policy"`

	// TokenTTL is the session token lifetime in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// TokenIssuer is the iss claim of issued session tokens
	TokenIssuer string `yaml:"token_issuer" json:"token_issuer"`

	// AllowedOrigins are the web client origins allowed by CORS
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// AuditEnabled turns RFC5424 audit logging on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// TokenSecret signs session tokens. Environment only.
	TokenSecret string `yaml:"-" json:"-"`

	// DatabaseURL is the postgres connection string. Environment only.
	DatabaseURL string `yaml:"-" json:"-"`

	// AuditDatabaseURL is where audit messages are stored. Environment only.
	AuditDatabaseURL string `yaml:"-" json:"-"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors ChurchConfig with pointers so that values explicitly set
// to their zero value in the file are still applied.
type fileConfig struct {
	ListenAddress  *string  `yaml:"listen_address"`
	Port           *int     `yaml:"port"`
	PolicyPath     *string  `yaml:"policy_path"`
	WatchPolicy    *bool    `yaml:"watch_policy"`
	TokenTTL       *int     `yaml:"token_ttl"`
	TokenIssuer    *string  `yaml:"token_issuer"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AuditEnabled   *bool    `yaml:"audit_enabled"`
	LogLevel       *string  `yaml:"log_level"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values
func newDefault() *ChurchConfig {
	return &ChurchConfig{
		ListenAddress:  "0.0.0.0",
		Port:           8080,
		PolicyPath:     "",
		WatchPolicy:    false,
		TokenTTL:       86400,
		TokenIssuer:    "church-web",
		AllowedOrigins: []string{},
		AuditEnabled:   true,
		LogLevel:       "info",
		sources:        make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*ChurchConfig, error) {
	config := newDefault()

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	// Determine config file path
	configPath := os.Getenv("CHURCH_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	// Try to load from config file
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	// Override with environment variables
	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"listen_address", "port", "policy_path", "watch_policy",
		"token_ttl", "token_issuer", "allowed_origins", "audit_enabled",
		"log_level", "token_secret", "database_url", "audit_database_url",
	}
}

func (c *ChurchConfig) applyFileConfig(file *fileConfig) {
	if file.ListenAddress != nil {
		c.ListenAddress = *file.ListenAddress
		c.sources["listen_address"] = "file"
	}
	if file.Port != nil {
		c.Port = *file.Port
		c.sources["port"] = "file"
	}
	if file.PolicyPath != nil {
		c.PolicyPath = *file.PolicyPath
		c.sources["policy_path"] = "file"
	}
	if file.WatchPolicy != nil {
		c.WatchPolicy = *file.WatchPolicy
		c.sources["watch_policy"] = "file"
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if file.TokenIssuer != nil {
		c.TokenIssuer = *file.TokenIssuer
		c.sources["token_issuer"] = "file"
	}
	if len(file.AllowedOrigins) > 0 {
		c.AllowedOrigins = file.AllowedOrigins
		c.sources["allowed_origins"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
}

func (c *ChurchConfig) applyEnvConfig() error {
	if val := os.Getenv("CHURCH_LISTEN_ADDRESS"); val != "" {
		c.ListenAddress = val
		c.sources["listen_address"] = "environment"
	}
	if val := os.Getenv("CHURCH_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid CHURCH_PORT %q: %w", val, err)
		}
		c.Port = i
		c.sources["port"] = "environment"
	}
	if val := os.Getenv("CHURCH_POLICY_PATH"); val != "" {
		c.PolicyPath = val
		c.sources["policy_path"] = "environment"
	}
	if val := os.Getenv("CHURCH_WATCH_POLICY"); val != "" {
		c.WatchPolicy = val == "true" || val == "1"
		c.sources["watch_policy"] = "environment"
	}
	if val := os.Getenv("CHURCH_TOKEN_TTL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid CHURCH_TOKEN_TTL %q: %w", val, err)
		}
		c.TokenTTL = i
		c.sources["token_ttl"] = "environment"
	}
	if val := os.Getenv("CHURCH_TOKEN_ISSUER"); val != "" {
		c.TokenIssuer = val
		c.sources["token_issuer"] = "environment"
	}
	if val := os.Getenv("CHURCH_ALLOWED_ORIGINS"); val != "" {
		c.AllowedOrigins = splitAndTrim(val)
		c.sources["allowed_origins"] = "environment"
	}
	if val := os.Getenv("CHURCH_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("CHURCH_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("CHURCH_TOKEN_SECRET"); val != "" {
		c.TokenSecret = val
		c.sources["token_secret"] = "environment"
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.sources["audit_database_url"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *ChurchConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *ChurchConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Addr returns the host:port the server listens on
func (c *ChurchConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.Port)
}

// SessionTTL returns the session token TTL as a duration
func (c *ChurchConfig) SessionTTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// SigningKey returns the session token signing key
func (c *ChurchConfig) SigningKey() ([]byte, error) {
	if c.TokenSecret == "" {
		return nil, fmt.Errorf("CHURCH_TOKEN_SECRET environment variable is required")
	}
	if len(c.TokenSecret) < MinTokenSecretLength {
		return nil, fmt.Errorf("CHURCH_TOKEN_SECRET must be at least %d bytes", MinTokenSecretLength)
	}
	return []byte(c.TokenSecret), nil
}

// Validate validates the configuration
func (c *ChurchConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	if c.WatchPolicy && c.PolicyPath == "" {
		return fmt.Errorf("watch_policy requires policy_path")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	// Validate allowed origins are "*" or scheme://host
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid allowed_origins value: %s", origin)
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *ChurchConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "listen_address", Value: c.ListenAddress, Source: c.Source("listen_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "policy_path", Value: c.PolicyPath, Source: c.Source("policy_path")},
		{Name: "watch_policy", Value: strconv.FormatBool(c.WatchPolicy), Source: c.Source("watch_policy")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "token_issuer", Value: c.TokenIssuer, Source: c.Source("token_issuer")},
		{Name: "allowed_origins", Value: strings.Join(c.AllowedOrigins, ","), Source: c.Source("allowed_origins")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "token_secret", Value: redact(c.TokenSecret), Source: c.Source("token_secret")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "audit_database_url", Value: redactURL(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
	}
}

// FormatText returns a text representation of the configuration
func (c *ChurchConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *ChurchConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// redactURL hides the password of a connection URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "********"
	}
	return u.Redacted()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
