package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAccessTokenTTL  = 12 * time.Hour
	defaultIssuer          = "daily-report"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultIsolationLevel  = "read committed"
	minJWTSecretLength     = 32
	defaultApplicationName = "daily-report-grpc"
	defaultTimezone        = "UTC"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host                string        `yaml:"host"`
	Port                int           `yaml:"port"`
	User                string        `yaml:"user"`
	Password            string        `yaml:"password"`
	Name                string        `yaml:"name"`
	SSLMode             string        `yaml:"ssl_mode"`
	ApplicationName     string        `yaml:"application_name"`
	Timezone            string        `yaml:"timezone"`
	StatementTimeout    time.Duration `yaml:"-"`
	StatementTimeoutRaw string        `yaml:"statement_timeout"`
	IsolationLevel      string        `yaml:"isolation_level"`
	MaxOpenConns        int           `yaml:"max_open_conns"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	ConnMaxLifetime     time.Duration `yaml:"-"`
	ConnMaxIdleTime     time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw  string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw  string        `yaml:"conn_max_idle_time"`
}

// RuntimeParams は接続ごとに設定するセッションパラメータを返します。
func (d DatabaseConfig) RuntimeParams() map[string]string {
	params := map[string]string{
		"application_name": d.ApplicationName,
		"timezone":         d.Timezone,
	}
	if d.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(d.StatementTimeout.Milliseconds(), 10)
	}
	return params
}

// AuthConfig はアクセストークン発行に関する設定です。
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	Issuer            string        `yaml:"issuer"`
	AccessTokenTTL    time.Duration `yaml:"-"`
	AccessTokenTTLRaw string        `yaml:"access_token_ttl"`
	// BcryptCost が 0 の場合は bcrypt の既定値を使用します。
	BcryptCost        int           `yaml:"bcrypt_cost"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PathFromEnv は CONFIG_PATH 環境変数、未設定なら既定のパスを返します。
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "assets/local.yaml"
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Auth.validateAndNormalize(); err != nil {
		return err
	}

	c.Log.normalize()
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.ApplicationName == "" {
		d.ApplicationName = defaultApplicationName
	}
	if d.Timezone == "" {
		d.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return fmt.Errorf("config: database.timezone: %w", err)
	}

	timeout, err := parseDurationAllowEmpty(d.StatementTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.statement_timeout: %w", err)
	}
	d.StatementTimeout = timeout

	level := strings.ToLower(strings.TrimSpace(d.IsolationLevel))
	switch level {
	case "":
		level = defaultIsolationLevel
	case "serializable", "repeatable read", "read committed":
	default:
		return fmt.Errorf("config: database.isolation_level %q is not supported", d.IsolationLevel)
	}
	d.IsolationLevel = level

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if len(a.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("config: auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}
	if a.Issuer == "" {
		a.Issuer = defaultIssuer
	}

	ttl, err := parseDurationAllowEmpty(a.AccessTokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.access_token_ttl: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	a.AccessTokenTTL = ttl

	if a.BcryptCost != 0 && (a.BcryptCost < 4 || a.BcryptCost > 31) {
		return fmt.Errorf("config: auth.bcrypt_cost must be between 4 and 31 or 0")
	}

	return nil
}

func (l *LogConfig) normalize() {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	query := url.Values{}
	query.Set("sslmode", d.SSLMode)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}
