package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Config 保存应用程序配置。
type Config struct {
	App      AppConfig      `json:"app"`
	MySQL    MySQLConfig    `json:"mysql"`
	Redis    RedisConfig    `json:"redis"`
	Email    EmailConfig    `json:"email"`
	Security SecurityConfig `json:"security"`
	Media    MediaConfig    `json:"media"`
}

// AppConfig 应用程序基础配置。
type AppConfig struct {
	Env            string  `json:"env"`              // 运行环境: local / prod
	LogLevel       string  `json:"log_level"`        // 日志级别: debug / info / warn / error
	HTTPAddr       string  `json:"http_addr"`        // API 服务监听地址
	PublicBaseURL  string  `json:"public_base_url"`  // 对外地址，用于拼接重置链接
	ResetRateLimit float64 `json:"reset_rate_limit"` // forgot-password 限流速率（token/s）
	ResetRateBurst float64 `json:"reset_rate_burst"` // forgot-password 限流桶容量
	MaxUploadBytes int64   `json:"max_upload_bytes"` // 单次上传大小上限
	DedupWindow    int     `json:"dedup_window"`     // 上传内容去重缓存窗口（秒）
}

// MySQLConfig MySQL 数据库配置。
type MySQLConfig struct {
	DSN string `json:"dsn"` // 数据库连接字符串
}

// RedisConfig Redis 配置。
type RedisConfig struct {
	Addr     string `json:"addr"`     // Redis 地址 (host:port)
	Password string `json:"password"` // Redis 密码
}

// EmailConfig 邮件配置。
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	FromEmail string `json:"from_email"`
}

// SecurityConfig 安全相关配置。
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"` // 会话令牌签名密钥
}

// MediaConfig 对象存储配置。
type MediaConfig struct {
	Endpoint      string `json:"endpoint"`        // 自定义端点（MinIO 等），空表示 AWS 默认
	Region        string `json:"region"`          // 区域
	Bucket        string `json:"bucket"`          // 存储桶
	AccessKey     string `json:"access_key"`      // 访问密钥
	SecretKey     string `json:"secret_key"`      // 私钥
	PublicBaseURL string `json:"public_base_url"` // 对象公开访问前缀（CDN）
}

// Load 从 JSON 文件加载配置。
//
// 配置文件不存在时使用默认值；环境变量始终可以覆盖文件内容。
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

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

// getDefaultConfig 返回默认配置。
func getDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:            "local",
			LogLevel:       "info",
			HTTPAddr:       ":4000",
			PublicBaseURL:  "http://localhost:4000",
			ResetRateLimit: 1,
			ResetRateBurst: 5,
			MaxUploadBytes: 5 * 1024 * 1024,
			DedupWindow:    86400,
		},
		MySQL: MySQLConfig{
			DSN: "root:password@tcp(localhost:3306)/curiohub?parseTime=true&loc=Local",
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
			JWTSecret: "dev_secret_change_me",
		},
		Media: MediaConfig{
			Endpoint:      "http://localhost:9000",
			Region:        "us-east-1",
			Bucket:        "curiohub-media",
			AccessKey:     "",
			SecretKey:     "",
			PublicBaseURL: "",
		},
	}
}

// applyDefaults 对未设置的字段应用默认值。
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
	if cfg.App.PublicBaseURL == "" {
		cfg.App.PublicBaseURL = defaults.App.PublicBaseURL
	}
	if cfg.App.ResetRateLimit == 0 {
		cfg.App.ResetRateLimit = defaults.App.ResetRateLimit
	}
	if cfg.App.ResetRateBurst == 0 {
		cfg.App.ResetRateBurst = defaults.App.ResetRateBurst
	}
	if cfg.App.MaxUploadBytes == 0 {
		cfg.App.MaxUploadBytes = defaults.App.MaxUploadBytes
	}
	if cfg.App.DedupWindow == 0 {
		cfg.App.DedupWindow = defaults.App.DedupWindow
	}
	if cfg.MySQL.DSN == "" {
		cfg.MySQL.DSN = defaults.MySQL.DSN
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaults.Redis.Addr
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = defaults.Email.SMTPPort
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = defaults.Security.JWTSecret
	}
	if cfg.Media.Region == "" {
		cfg.Media.Region = defaults.Media.Region
	}
	if cfg.Media.Bucket == "" {
		cfg.Media.Bucket = defaults.Media.Bucket
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
	_ = viper.BindEnv("s3_access_key", "S3_ACCESS_KEY")
	_ = viper.BindEnv("s3_secret_key", "S3_SECRET_KEY")

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	}
	if v := os.Getenv("APP_PUBLIC_BASE_URL"); v != "" {
		cfg.App.PublicBaseURL = v
	}
	if v := os.Getenv("APP_RESET_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.App.ResetRateLimit = f
		}
	}
	if v := os.Getenv("APP_RESET_RATE_BURST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.App.ResetRateBurst = f
		}
	}
	if v := os.Getenv("APP_MAX_UPLOAD_BYTES"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.App.MaxUploadBytes = i
		}
	}
	if v := os.Getenv("APP_DEDUP_WINDOW"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.App.DedupWindow = i
		}
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}

	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.MySQL.DSN = v
	} else if hasAnyEnv("DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME") || viper.GetString("db_host") != "" || viper.GetString("db_password") != "" {
		parsed := parseMySQLDSN(cfg.MySQL.DSN)
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
		cfg.MySQL.DSN = parsed.FormatDSN()
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

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Media.Endpoint = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Media.Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Media.Bucket = v
	}
	if v := viper.GetString("s3_access_key"); v != "" {
		cfg.Media.AccessKey = v
	}
	if v := viper.GetString("s3_secret_key"); v != "" {
		cfg.Media.SecretKey = v
	}
	if v := os.Getenv("MEDIA_PUBLIC_BASE_URL"); v != "" {
		cfg.Media.PublicBaseURL = v
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
		DBName: "curiohub",
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
