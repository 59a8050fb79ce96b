package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

type AgentConfig struct {
	// Backend selects the agent service implementation: "azure" talks to the
	// hosted service, "emu" runs the local engine against a chat model.
	Backend          string `mapstructure:"backend"`
	Endpoint         string `mapstructure:"endpoint"`
	APIVersion       string `mapstructure:"api_version"`
	Model            string `mapstructure:"model"`
	AgentID          string `mapstructure:"agent_id"`
	AgentName        string `mapstructure:"agent_name"`
	BingConnectionID string `mapstructure:"bing_connection_id"`
	// InstructionsVersion pins a prompt version; zero means current.
	InstructionsVersion float32       `mapstructure:"instructions_version"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	RunWait             time.Duration `mapstructure:"run_wait"`
}

type MCPConfig struct {
	URL             string        `mapstructure:"url"`
	Transport       string        `mapstructure:"transport"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	CallRetries     int           `mapstructure:"call_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type BotConfig struct {
	AppID             string `mapstructure:"app_id"`
	AppPasswordSecret string `mapstructure:"app_password_secret"`
	OpenIDMetadataURL string `mapstructure:"openid_metadata_url"`
	AllowAnonymous    bool   `mapstructure:"allow_anonymous"`
	EchoState         bool   `mapstructure:"echo_state"`
}

type StateConfig struct {
	Backend string        `mapstructure:"backend"` // memory | redis | mysql
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type VaultConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type LLMConfig struct {
	OllamaURLs    []string `mapstructure:"ollama_urls"`
	GeminiAPIKey  string   `mapstructure:"gemini_api_key"`
	OpenAIAPIKey  string   `mapstructure:"open_ai_api_key"`
	OpenAIBaseURL string   `mapstructure:"open_ai_base_url"`
}

type Settings struct {
	App       AppConfig       `mapstructure:"app"`
	Agent     AgentConfig     `mapstructure:"agent"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Bot       BotConfig       `mapstructure:"botframework"`
	State     StateConfig     `mapstructure:"state"`
	Redis     RedisConfig     `mapstructure:"redis"`
	DB        DBConfig        `mapstructure:"database"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Env       string          `mapstructure:"env"`
	Debug     bool            `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	// Load settings from a configuration file or environment variables
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "newscap")
	viper.SetDefault("app.port", 3978)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("agent.backend", "azure")
	viper.SetDefault("agent.api_version", "2025-05-01")
	viper.SetDefault("agent.model", "gpt-4o")
	viper.SetDefault("agent.agent_name", "my-assistant")
	viper.SetDefault("agent.poll_interval", time.Second)
	viper.SetDefault("agent.run_wait", 5*time.Minute)
	viper.SetDefault("mcp.url", "http://localhost:8000/mcp")
	viper.SetDefault("mcp.transport", "http")
	viper.SetDefault("mcp.connect_timeout", 30*time.Second)
	viper.SetDefault("mcp.call_retries", 3)
	viper.SetDefault("mcp.retry_backoff", time.Second)
	viper.SetDefault("botframework.openid_metadata_url", "https://login.botframework.com/v1/.well-known/openidconfiguration")
	viper.SetDefault("state.backend", "memory")
	viper.SetDefault("state.ttl", 24*time.Hour)
	viper.SetDefault("auth.token_ttl", 15*time.Minute)
	viper.SetDefault("telemetry.sample_ratio", 1.0)
}

func (s *Settings) validate() error {
	switch s.Agent.Backend {
	case "azure":
		if s.Agent.Endpoint == "" {
			return fmt.Errorf("agent.endpoint is required for the azure backend")
		}
	case "emu":
		// model routing decides which engine config is needed; checked at wiring
	default:
		return fmt.Errorf("unknown agent backend: %q", s.Agent.Backend)
	}
	if s.MCP.URL == "" {
		return fmt.Errorf("mcp.url is required")
	}
	switch s.State.Backend {
	case "memory":
	case "redis":
		if s.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis state backend")
		}
	case "mysql":
		if s.DB.Host == "" || s.DB.Name == "" {
			return fmt.Errorf("database host/name are required for the mysql state backend")
		}
	default:
		return fmt.Errorf("unknown state backend: %q", s.State.Backend)
	}
	return nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
