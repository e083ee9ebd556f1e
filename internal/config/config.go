package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	App       AppConfig       `json:"app"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Email     EmailConfig     `json:"email"`
	Security  SecurityConfig  `json:"security"`
	Storage   StorageConfig   `json:"storage"`
	OAuth     OAuthConfig     `json:"oauth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// AppConfig is the basic application configuration.
type AppConfig struct {
	Env         string `json:"env"`          // local / prod
	LogLevel    string `json:"log_level"`    // debug / info / warn / error
	HTTPAddr    string `json:"http_addr"`    // API listen address
	FrontendURL string `json:"frontend_url"` // OAuth redirect target
	SeedData    bool   `json:"seed_data"`    // seed domain allowlist and default admin on start
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `json:"driver"` // mysql / postgres / memory
	DSN    string `json:"dsn"`
}

// RedisConfig configures the redis client used for rate limiting and
// resend cooldowns. An empty Addr disables both.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
}

// EmailConfig configures SMTP delivery of registration codes.
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	FromEmail string `json:"from_email"`
}

// SecurityConfig holds token, code and seed-admin settings.
type SecurityConfig struct {
	JWTSecret         string        `json:"jwt_secret"`
	TokenTTL          time.Duration `json:"token_ttl"`           // session token lifetime
	OTPTTL            time.Duration `json:"otp_ttl"`             // registration code lifetime
	OTPResendInterval time.Duration `json:"otp_resend_interval"` // 0 disables the cooldown
	CodeSweepInterval time.Duration `json:"code_sweep_interval"` // how often expired codes are purged
	AdminEmail        string        `json:"admin_email"`
	AdminPassword     string        `json:"admin_password"`
}

// StorageConfig configures where uploaded files go.
type StorageConfig struct {
	Backend      string `json:"backend"`       // local / s3
	Dir          string `json:"dir"`           // local directory
	PublicPrefix string `json:"public_prefix"` // URL prefix for local files
	S3Bucket     string `json:"s3_bucket"`
	S3Region     string `json:"s3_region"`
	S3Endpoint   string `json:"s3_endpoint"`
	S3AccessKey  string `json:"s3_access_key"`
	S3SecretKey  string `json:"s3_secret_key"`
	S3PublicURL  string `json:"s3_public_url"` // base URL objects are served from
}

// OAuthConfig configures Google login. Empty client credentials disable it.
type OAuthConfig struct {
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURL  string `json:"google_redirect_url"`
}

// RateLimitConfig configures the per-client token bucket on auth routes.
type RateLimitConfig struct {
	Rate  float64 `json:"rate"`  // tokens per second, 0 disables
	Burst float64 `json:"burst"` // bucket size
}

// Load reads configuration from a JSON file.
//
// It tries configs/config.json unless a path is given. A missing file falls
// back to defaults. A .env file in the working directory is loaded first and
// environment variables override file values.
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	_ = godotenv.Load()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := getDefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Save writes configuration to a JSON file.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// OAuthEnabled reports whether Google login is configured.
func (c *Config) OAuthEnabled() bool {
	return c.OAuth.GoogleClientID != "" && c.OAuth.GoogleClientSecret != ""
}

func getDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:         "local",
			LogLevel:    "info",
			HTTPAddr:    ":5002",
			FrontendURL: "http://localhost:5173",
			SeedData:    true,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			DSN:    "root:password@tcp(localhost:3306)/joblink?parseTime=true&loc=Local",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
		},
		Email: EmailConfig{
			SMTPHost:  "smtp.gmail.com",
			SMTPPort:  587,
			SMTPUser:  "",
			SMTPPass:  "",
			FromEmail: "",
		},
		Security: SecurityConfig{
			JWTSecret:         "dev_secret_change_me",
			TokenTTL:          7 * 24 * time.Hour,
			OTPTTL:            10 * time.Minute,
			OTPResendInterval: 0,
			CodeSweepInterval: 15 * time.Minute,
			AdminEmail:        "admin@joblink.com",
			AdminPassword:     "admin123",
		},
		Storage: StorageConfig{
			Backend:      "local",
			Dir:          "uploads",
			PublicPrefix: "/uploads",
			S3Region:     "us-east-1",
		},
		OAuth: OAuthConfig{
			GoogleRedirectURL: "http://localhost:5002/api/auth/google/callback",
		},
		RateLimit: RateLimitConfig{
			Rate:  5,
			Burst: 20,
		},
	}
}

// applyDefaults fills fields left unset by the config file.
func applyDefaults(cfg *Config) {
	defaults := getDefaultConfig()

	if cfg.App.Env == "" {
		cfg.App.Env = defaults.App.Env
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = defaults.App.LogLevel
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = defaults.App.HTTPAddr
	}
	if cfg.App.FrontendURL == "" {
		cfg.App.FrontendURL = defaults.App.FrontendURL
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaults.Database.Driver
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "mysql" {
		cfg.Database.DSN = defaults.Database.DSN
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = defaults.Email.SMTPPort
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = defaults.Security.JWTSecret
	}
	if cfg.Security.TokenTTL == 0 {
		cfg.Security.TokenTTL = defaults.Security.TokenTTL
	}
	if cfg.Security.OTPTTL == 0 {
		cfg.Security.OTPTTL = defaults.Security.OTPTTL
	}
	if cfg.Security.CodeSweepInterval == 0 {
		cfg.Security.CodeSweepInterval = defaults.Security.CodeSweepInterval
	}
	if cfg.Security.AdminEmail == "" {
		cfg.Security.AdminEmail = defaults.Security.AdminEmail
	}
	if cfg.Security.AdminPassword == "" {
		cfg.Security.AdminPassword = defaults.Security.AdminPassword
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaults.Storage.Dir
	}
	if cfg.Storage.PublicPrefix == "" {
		cfg.Storage.PublicPrefix = defaults.Storage.PublicPrefix
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = defaults.Storage.S3Region
	}
	if cfg.OAuth.GoogleRedirectURL == "" {
		cfg.OAuth.GoogleRedirectURL = defaults.OAuth.GoogleRedirectURL
	}
	if cfg.RateLimit.Burst == 0 && cfg.RateLimit.Rate > 0 {
		cfg.RateLimit.Burst = defaults.RateLimit.Burst
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("db_host", "DB_HOST")
	_ = viper.BindEnv("db_password", "DB_PASSWORD")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("smtp_pass", "SMTP_PASS")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("admin_password", "ADMIN_PASSWORD")
	_ = viper.BindEnv("s3_secret_key", "S3_SECRET_KEY")
	_ = viper.BindEnv("google_client_secret", "GOOGLE_CLIENT_SECRET")

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.App.HTTPAddr = ":" + v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.App.FrontendURL = v
	}
	if v := os.Getenv("APP_SEED_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.App.SeedData = b
		}
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.TokenTTL = d
		}
	}
	if v := os.Getenv("OTP_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.OTPTTL = d
		}
	}
	if v := os.Getenv("OTP_RESEND_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.OTPResendInterval = d
		}
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Security.AdminEmail = v
	}
	if v := viper.GetString("admin_password"); v != "" {
		cfg.Security.AdminPassword = v
	}

	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	} else if cfg.Database.Driver == "mysql" && (hasAnyEnv("DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME") || viper.GetString("db_host") != "" || viper.GetString("db_password") != "") {
		parsed := parseMySQLDSN(cfg.Database.DSN)
		if v := viper.GetString("db_host"); v != "" {
			host := v
			port := getenvDefault("DB_PORT", parsed.Addr, "3306")
			parsed.Addr = host + ":" + port
		} else if v := os.Getenv("DB_PORT"); v != "" {
			host := parsed.Addr
			if strings.Contains(host, ":") {
				host = strings.Split(host, ":")[0]
			}
			parsed.Addr = host + ":" + v
		}
		if v := os.Getenv("DB_USER"); v != "" {
			parsed.User = v
		}
		if v := viper.GetString("db_password"); v != "" {
			parsed.Passwd = v
		}
		if v := os.Getenv("DB_NAME"); v != "" {
			parsed.DBName = v
		}
		cfg.Database.DSN = parsed.FormatDSN()
	}

	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := viper.GetString("redis_password"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = i
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := viper.GetString("smtp_pass"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Email.FromEmail = v
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Storage.S3Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.S3Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.S3AccessKey = v
	}
	if v := viper.GetString("s3_secret_key"); v != "" {
		cfg.Storage.S3SecretKey = v
	}
	if v := os.Getenv("S3_PUBLIC_URL"); v != "" {
		cfg.Storage.S3PublicURL = v
	}

	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.OAuth.GoogleClientID = v
	}
	if v := viper.GetString("google_client_secret"); v != "" {
		cfg.OAuth.GoogleClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		cfg.OAuth.GoogleRedirectURL = v
	} else if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.OAuth.GoogleRedirectURL = strings.TrimRight(v, "/") + "/api/auth/google/callback"
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.Rate = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.Burst = f
		}
	}
}

func hasAnyEnv(keys ...string) bool {
	for _, key := range keys {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

func getenvDefault(envKey, fallbackAddr, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if fallbackAddr == "" {
		return defaultValue
	}
	if strings.Contains(fallbackAddr, ":") {
		parts := strings.Split(fallbackAddr, ":")
		if len(parts) == 2 && parts[1] != "" {
			return parts[1]
		}
	}
	return defaultValue
}

func parseMySQLDSN(dsn string) *mysql.Config {
	fallback := &mysql.Config{
		User:   "root",
		Passwd: "",
		Net:    "tcp",
		Addr:   "localhost:3306",
		DBName: "joblink",
		Params: map[string]string{
			"parseTime": "true",
			"loc":       "Local",
		},
	}
	if dsn == "" {
		return fallback
	}
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fallback
	}
	return parsed
}

// UnmarshalJSON accepts durations as strings such as "10m".
func (s *SecurityConfig) UnmarshalJSON(data []byte) error {
	type Alias SecurityConfig
	aux := &struct {
		TokenTTL          string `json:"token_ttl"`
		OTPTTL            string `json:"otp_ttl"`
		OTPResendInterval string `json:"otp_resend_interval"`
		CodeSweepInterval string `json:"code_sweep_interval"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.TokenTTL != "" {
		d, err := time.ParseDuration(aux.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid token_ttl format: %w", err)
		}
		s.TokenTTL = d
	}
	if aux.OTPTTL != "" {
		d, err := time.ParseDuration(aux.OTPTTL)
		if err != nil {
			return fmt.Errorf("invalid otp_ttl format: %w", err)
		}
		s.OTPTTL = d
	}
	if aux.OTPResendInterval != "" {
		d, err := time.ParseDuration(aux.OTPResendInterval)
		if err != nil {
			return fmt.Errorf("invalid otp_resend_interval format: %w", err)
		}
		s.OTPResendInterval = d
	}
	if aux.CodeSweepInterval != "" {
		d, err := time.ParseDuration(aux.CodeSweepInterval)
		if err != nil {
			return fmt.Errorf("invalid code_sweep_interval format: %w", err)
		}
		s.CodeSweepInterval = d
	}

	return nil
}

// MarshalJSON writes durations as strings.
func (s SecurityConfig) MarshalJSON() ([]byte, error) {
	type Alias SecurityConfig
	return json.Marshal(&struct {
		TokenTTL          string `json:"token_ttl"`
		OTPTTL            string `json:"otp_ttl"`
		OTPResendInterval string `json:"otp_resend_interval"`
		CodeSweepInterval string `json:"code_sweep_interval"`
		*Alias
	}{
		TokenTTL:          s.TokenTTL.String(),
		OTPTTL:            s.OTPTTL.String(),
		OTPResendInterval: s.OTPResendInterval.String(),
		CodeSweepInterval: s.CodeSweepInterval.String(),
		Alias:             (*Alias)(&s),
	})
}
