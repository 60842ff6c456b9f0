package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// AI providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// History drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// minHistoryLimit keeps room for at least one user/model pair.
const minHistoryLimit = 2

// Config 聚合后端服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	History HistoryConfig
	Log     LogConfig
}

// ClientConfig 聚合终端客户端的配置项。
type ClientConfig struct {
	Endpoint string `env:"CHAT_ENDPOINT" envDefault:"http://127.0.0.1:5000/chat"`
	Log      LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"5000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Addr           string
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider     string `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	APIKey      string `env:"ARK_API_KEY"`
	AccessKey   string `env:"ARK_ACCESS_KEY"`
	SecretKey   string `env:"ARK_SECRET_KEY"`
	Model       string `env:"ARK_MODEL"`
	BaseURL     string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// HistoryConfig 描述会话历史的存储方式。
type HistoryConfig struct {
	Driver         string `env:"HISTORY_DRIVER" envDefault:"memory"`
	SQLitePath     string `env:"HISTORY_SQLITE_PATH" envDefault:"chat_history.db"`
	ConversationID string `env:"HISTORY_CONVERSATION_ID" envDefault:"main_chat_session"`
	Limit          int    `env:"HISTORY_LIMIT" envDefault:"50"`
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"LOG_DEVELOPMENT"`
	File        string `env:"LOG_FILE"`
}

// Load 从环境变量加载后端配置。
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.AI.loadOptionals(); err != nil {
		return nil, err
	}
	if err := cfg.AI.validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadClient 从环境变量加载客户端配置。
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("CHAT_ENDPOINT must not be empty")
	}
	return &cfg, nil
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// Enabled 表示所选提供方的凭证是否齐全。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return false
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func (c *AIConfig) loadOptionals() error {
	var err error
	if c.Temperature, err = parseOptionalFloatEnv("ARK_TEMPERATURE"); err != nil {
		return err
	}
	if c.TopP, err = parseOptionalFloatEnv("ARK_TOP_P"); err != nil {
		return err
	}
	if c.MaxTokens, err = parseOptionalIntEnv("ARK_MAX_TOKENS"); err != nil {
		return err
	}
	return nil
}

func (c *AIConfig) validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderArk:
		return nil
	default:
		return fmt.Errorf("invalid AI_PROVIDER value %q: want %s or %s", c.Provider, ProviderGemini, ProviderArk)
	}
}

func (c *HistoryConfig) validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("HISTORY_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid HISTORY_DRIVER value %q", c.Driver)
	}

	if strings.TrimSpace(c.ConversationID) == "" {
		return fmt.Errorf("HISTORY_CONVERSATION_ID must not be empty")
	}
	if c.Limit < minHistoryLimit {
		c.Limit = minHistoryLimit
	}
	return nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
