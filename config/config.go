package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

type catalog struct {
	FeedPath        string `mapstructure:"feed_path" validate:"required"`
	SyncIntervalSec int    `mapstructure:"sync_interval_sec" validate:"gte=1"`
}

type shop struct {
	Currency    string  `mapstructure:"currency" validate:"required,len=3"`
	DeliveryFee float64 `mapstructure:"delivery_fee" validate:"gte=0"`
}

type crypto struct {
	Wallets map[string]string  `mapstructure:"wallets"`
	Rates   map[string]float64 `mapstructure:"rates"`
}

type chatAPI struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Token   string `mapstructure:"token" validate:"required"`

	// Card payments are disabled, not fatal, when this is empty.
	ProviderToken string `mapstructure:"provider_token"`
}

type topics struct {
	Orders        string `mapstructure:"orders" validate:"required"`
	PaymentEvents string `mapstructure:"payment_events" validate:"required"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers" validate:"min=1"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls" validate:"min=1"`
	Topics             topics   `mapstructure:"topics"`
	PaymentEventsGroup string   `mapstructure:"payment_events_group" validate:"required"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr" validate:"required"`
	Catalog        catalog    `mapstructure:"catalog"`
	Shop           shop       `mapstructure:"shop"`
	Crypto         crypto     `mapstructure:"crypto"`
	ChatAPI        chatAPI    `mapstructure:"chat_api"`
	Broker         broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())
	viper.SetDefault("catalog.sync_interval_sec", 600)
	viper.SetDefault("shop.currency", "EUR")

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	err = validator.New().Struct(cfg)
	if err != nil {
		die(err)
	}

	if !cfg.CardEnabled() {
		slog.Warn("chat_api.provider_token is not set, card checkout is disabled")
	}

	return cfg
}

// SyncInterval is the catalog reload cadence.
func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.Catalog.SyncIntervalSec) * time.Second
}

// CardEnabled reports whether the payment provider is configured.
func (c Config) CardEnabled() bool {
	return c.ChatAPI.ProviderToken != ""
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Catalog:
	FeedPath=%q
	SyncIntervalSec=%d

	Shop:
	Currency=%q
	DeliveryFee=%.2f
	CardEnabled=%t
	CryptoCoins=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		Orders=%q
		PaymentEvents=%q
	PaymentEventsGroup=%q

`
	coins := make([]string, 0, len(c.Crypto.Wallets))
	for coin := range c.Crypto.Wallets {
		coins = append(coins, coin)
	}

	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Catalog.FeedPath,
		c.Catalog.SyncIntervalSec,
		c.Shop.Currency,
		c.Shop.DeliveryFee,
		c.CardEnabled(),
		coins,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.Orders,
		c.Broker.Topics.PaymentEvents,
		c.Broker.PaymentEventsGroup,
	)
}
