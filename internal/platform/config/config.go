package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	ContractsDir  string
	PostgresURL   string
	JWTSigningKey string
	ReporterID    string
	OTLPEndpoint  string

	Redis RedisConfig
	Kafka KafkaConfig

	// Invoice processing thresholds.
	FraudBlockThreshold float64
	FraudHoldThreshold  float64
}

// RedisConfig holds connection settings for the vendor threat cache.
// An empty URL leaves Redis disabled.
type RedisConfig struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	VendorRiskTTL time.Duration
}

// KafkaConfig holds settings for the threat feed publisher. Empty brokers
// leave publishing disabled.
type KafkaConfig struct {
	Brokers     []string
	ThreatTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PAYSHIELD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	contractsDir := os.Getenv("PAYSHIELD_CONTRACTS_DIR")
	if contractsDir == "" {
		contractsDir = "contracts"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	reporterID := os.Getenv("PAYSHIELD_REPORTER_ID")
	if reporterID == "" {
		reporterID = "payshield_node"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	threatTopic := os.Getenv("KAFKA_THREAT_TOPIC")
	if threatTopic == "" {
		threatTopic = "payshield.threats"
	}

	return Server{
		Addr:          addr,
		ContractsDir:  contractsDir,
		PostgresURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		ReporterID:    reporterID,
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			PoolSize:      envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:  envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:   5 * time.Second,
			ReadTimeout:   3 * time.Second,
			WriteTimeout:  3 * time.Second,
			VendorRiskTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			ThreatTopic: threatTopic,
		},
		FraudBlockThreshold: envFloat("FRAUD_BLOCK_THRESHOLD", 0.8),
		FraudHoldThreshold:  envFloat("FRAUD_HOLD_THRESHOLD", 0.5),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}
