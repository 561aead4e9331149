package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App struct {
		Port        int    `mapstructure:"port"`
		ProductName string `mapstructure:"product_name"`
	} `mapstructure:"app"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	MQTT struct {
		Broker   string `mapstructure:"broker"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"mqtt"`
	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"storage"`
	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`
	MDNS struct {
		LocalName string `mapstructure:"local_name"`
	} `mapstructure:"mdns"`
}

// LoadConfig reads configuration from config.yaml, .env, and env vars
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("CONFIG: No .env file loaded:", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("app.port", 5069)
	viper.SetDefault("app.product_name", "homevault")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("mqtt.client_id", "homevault-backend")
	viper.SetDefault("storage.bucket", "backups")
	viper.SetDefault("mdns.local_name", "homevault.local")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("CONFIG: No config.yaml found, using env and defaults")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
