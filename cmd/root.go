package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foodstore",
	Short: "Persistence and analytics layer for restaurant ordering",
	Long: `foodstore manages restaurants, products and orders on either a
PostgreSQL or a MongoDB backend, with order analytics, Kafka lifecycle
events and Parquet export of order history.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./foodstore.yaml)")

	rootCmd.PersistentFlags().String("backend", "postgres", "Storage backend: postgres or mongodb")
	rootCmd.PersistentFlags().String("postgres-dsn", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	rootCmd.PersistentFlags().String("mongo-database", "foodstore", "MongoDB database name")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Publish order events to Kafka")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("postgres_dsn", rootCmd.PersistentFlags().Lookup("postgres-dsn"))
	viper.BindPFlag("mongo_uri", rootCmd.PersistentFlags().Lookup("mongo-uri"))
	viper.BindPFlag("mongo_database", rootCmd.PersistentFlags().Lookup("mongo-database"))
	viper.BindPFlag("kafka_enabled", rootCmd.PersistentFlags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.PersistentFlags().Lookup("kafka-broker-list"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
