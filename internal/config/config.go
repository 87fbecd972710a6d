package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	CRDBDSN        string
	MongoURI       string
	RedisAddr      string
	RabbitURL      string
	SMTPAddr       string
	MailFrom       string
	GatewayBaseURL string
	RuleProfile    string
	IdempotencyTTL time.Duration
	OTLPEndpoint   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	gatewayBase := os.Getenv("GATEWAY_BASE_URL")
	if gatewayBase == "" {
		gatewayBase = "https://mercadopago.test"
	}

	return &Config{
		HTTPAddr:       httpAddr,
		CRDBDSN:        os.Getenv("CRDB_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		SMTPAddr:       os.Getenv("SMTP_ADDR"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		GatewayBaseURL: gatewayBase,
		RuleProfile:    os.Getenv("RULE_PROFILE"),
		IdempotencyTTL: idempTTL,
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
