package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server      ServerConfig
	AI          AIConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Negotiation NegotiationConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	negotiation, err := loadNegotiationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:      server,
		AI:          ai,
		Postgres:    PostgresConfig{DSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN"))},
		Redis:       RedisConfig{Addr: getEnvOrDefault("REDIS_ADDR", "localhost:6379")},
		Kafka:       loadKafkaConfig(),
		Negotiation: negotiation,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the completion-service connection.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a completion model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("completion credentials missing: set ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
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
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// PostgresConfig describes catalog/order persistence. Empty DSN means the
// service runs on the in-memory catalog and checkout is unavailable.
type PostgresConfig struct {
	DSN string
}

// Enabled reports whether a database connection was configured.
func (c PostgresConfig) Enabled() bool { return c.DSN != "" }

// RedisConfig describes cart snapshot storage.
type RedisConfig struct {
	Addr string
}

// KafkaConfig describes order-event publication. Empty broker list disables it.
type KafkaConfig struct {
	Brokers     []string
	ServiceName string
}

// Enabled reports whether event publication was configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

func loadKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName: getEnvOrDefault("SERVICE_NAME", "storefront-api"),
	}
}

// NegotiationConfig tunes the bargaining flow.
type NegotiationConfig struct {
	FloorRatio   float64
	HistoryLimit int
	CouponCodes  []string
}

func loadNegotiationConfig() (NegotiationConfig, error) {
	floor, err := parseOptionalFloatEnv("NEGOTIATION_FLOOR_RATIO")
	if err != nil {
		return NegotiationConfig{}, err
	}
	floorRatio := 0.8
	if floor != nil {
		if *floor <= 0 || *floor > 1 {
			return NegotiationConfig{}, fmt.Errorf("invalid NEGOTIATION_FLOOR_RATIO value: %v", *floor)
		}
		floorRatio = *floor
	}

	historyLimit := 20
	if override, err := parseOptionalIntEnv("NEGOTIATION_HISTORY_LIMIT"); err != nil {
		return NegotiationConfig{}, err
	} else if override != nil && *override > 0 {
		historyLimit = *override
	}

	coupons := splitCSV(os.Getenv("NEGOTIATION_COUPON_CODES"))
	if len(coupons) == 0 {
		coupons = []string{"SAVE10", "WELCOME20"}
	}

	return NegotiationConfig{
		FloorRatio:   floorRatio,
		HistoryLimit: historyLimit,
		CouponCodes:  coupons,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
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
