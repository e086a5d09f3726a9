package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOP_CONFIG_FILE"

const (
	geminiKeyEnvName      = "GEMINI_API_KEY"
	huggingfaceKeyEnvName = "HUGGINGFACE_API_KEY"
)

type model struct {
	Provider       string  `mapstructure:"provider"` // gemini or huggingface
	Name           string  `mapstructure:"name"`
	Endpoint       string  `mapstructure:"endpoint"` // huggingface only
	Temperature    float32 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type broker struct {
	SeedBrokers []string `mapstructure:"seed_brokers"`
	EventsTopic string   `mapstructure:"events_topic"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"` // empty runs on the in-memory store
	AllowedOrigins []string   `mapstructure:"allowed_origins"`
	Model          model      `mapstructure:"model"`
	Broker         broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
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

func (c Config) ModelTimeout() time.Duration {
	if c.Model.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// ModelAPIKey reads the provider credential from the environment. Keys
// never live in the config file and never appear in Print output.
func (c Config) ModelAPIKey() string {
	switch c.Model.Provider {
	case "huggingface":
		return os.Getenv(huggingfaceKeyEnvName)
	default:
		return os.Getenv(geminiKeyEnvName)
	}
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q
	AllowedOrigins=%q

	Model:
	Provider=%q
	Name=%q
	Endpoint=%q
	Temperature=%v
	TimeoutSeconds=%d

	Broker:
	SeedBrokers=%q
	EventsTopic=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB,
		c.AllowedOrigins,
		c.Model.Provider,
		c.Model.Name,
		c.Model.Endpoint,
		c.Model.Temperature,
		c.Model.TimeoutSeconds,
		c.Broker.SeedBrokers,
		c.Broker.EventsTopic,
	)
}
