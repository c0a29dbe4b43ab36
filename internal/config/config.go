package config

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定（PHARMACY_ 環境変数 / config.yaml）
type Config struct {
	Addr        string `default:":8080" usage:"API server listen address"`
	Env         string `default:"development" usage:"development or production"`
	DatabaseURL string `usage:"PostgreSQL connection URL (PHARMACY_DATABASE_URL or DATABASE_URL)"`
	JWTSecret   string `usage:"HMAC secret used to verify access tokens"`
	Pricing     PricingConfig
	Lifecycle   LifecycleConfig
	Notify      NotifyConfig
	Tracing     TracingConfig
}

// 金額は文字列で受けて decimal に変換する
type PricingConfig struct {
	TaxRate          string `default:"0" usage:"Tax rate applied to the subtotal (e.g. 0.14)"`
	ShippingFee      string `default:"0" usage:"Flat shipping fee"`
	FreeShippingOver string `default:"0" usage:"Subtotal from which shipping is free (0 disables)"`
}

type LifecycleConfig struct {
	ConflictRetries int           `default:"2" usage:"Retries of a status transition after a concurrent modification"`
	LockTimeout     time.Duration `default:"2s" usage:"Row lock wait limit inside a transition transaction (0 disables)"`
}

type NotifyConfig struct {
	SNSTopicARN string `usage:"SNS topic for order status events (empty disables)"`
}

type TracingConfig struct {
	Exporter    string  `default:"none" usage:"Span exporter: none, stdout or otlp"`
	Endpoint    string  `usage:"OTLP/HTTP endpoint URL (empty uses OTEL_EXPORTER_OTLP_* env)"`
	ServiceName string  `default:"pharmacy-api" usage:"service.name resource attribute"`
	SampleRatio float64 `default:"1" usage:"Fraction of root spans sampled (0..1)"`
}

// 変換済みの金額設定
type PricingRules struct {
	TaxRate          decimal.Decimal
	ShippingFee      decimal.Decimal
	FreeShippingOver decimal.Decimal
}

// Loadは .env → 環境変数 → config.yaml の順で読む
func Load() (Config, error) {
	//.env は無くてもよい
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PHARMACY",
		SkipFlags: true,
		Files:     []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL is required: set PHARMACY_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("PHARMACY_JWT_SECRET is required")
	}
	if cfg.Lifecycle.ConflictRetries < 0 {
		return Config{}, errors.New("lifecycle conflict retries must not be negative")
	}
	if cfg.Lifecycle.LockTimeout < 0 {
		return Config{}, errors.New("lifecycle lock timeout must not be negative")
	}
	if _, err := cfg.Pricing.Rules(); err != nil {
		return Config{}, err
	}
	switch strings.ToLower(cfg.Tracing.Exporter) {
	case "none", "stdout", "otlp":
	default:
		return Config{}, errors.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return Config{}, errors.New("tracing sample ratio must be between 0 and 1")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (p PricingConfig) Rules() (PricingRules, error) {
	tax, err := parseAmount("tax rate", p.TaxRate)
	if err != nil {
		return PricingRules{}, err
	}
	fee, err := parseAmount("shipping fee", p.ShippingFee)
	if err != nil {
		return PricingRules{}, err
	}
	free, err := parseAmount("free shipping threshold", p.FreeShippingOver)
	if err != nil {
		return PricingRules{}, err
	}
	return PricingRules{TaxRate: tax, ShippingFee: fee, FreeShippingOver: free}, nil
}

func parseAmount(name, v string) (decimal.Decimal, error) {
	if strings.TrimSpace(v) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse %s", name)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.Errorf("%s must not be negative", name)
	}
	return d, nil
}
