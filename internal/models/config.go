package models

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// Config selects the storage backend and carries the settings for the
// optional event and export pipelines. Exactly one backend is active
// for the lifetime of a process; backends are never mixed per call.
type Config struct {
	Backend string `mapstructure:"backend"`

	PostgresDSN   string `mapstructure:"postgres_dsn"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	KafkaTopic      string `mapstructure:"kafka_topic"`

	ExportFolder string `mapstructure:"export_folder"`
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Region     string `mapstructure:"s3_region"`

	SeedRestaurants      int `mapstructure:"seed_restaurants"`
	SeedProductsPerPlace int `mapstructure:"seed_products_per_place"`
	SeedOrdersPerPlace   int `mapstructure:"seed_orders_per_place"`
	SeedCustomers        int `mapstructure:"seed_customers"`
}

// LoadConfig initializes and reads the configuration using Viper.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("foodstore")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	viper.SetDefault("backend", BackendPostgres)
	viper.SetDefault("mongo_database", "foodstore")
	viper.SetDefault("kafka_topic", "order_events")
	viper.SetDefault("export_folder", "export")
	viper.SetDefault("seed_restaurants", 10)
	viper.SetDefault("seed_products_per_place", 8)
	viper.SetDefault("seed_orders_per_place", 25)
	viper.SetDefault("seed_customers", 40)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.Backend != BackendPostgres && config.Backend != BackendMongo {
		return nil, fmt.Errorf("unknown backend %q: expected %q or %q", config.Backend, BackendPostgres, BackendMongo)
	}

	return &config, nil
}
