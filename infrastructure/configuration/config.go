package configuration

import (
	"fmt"
	"os"
	"strconv"

	"vidmarket/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	ObjectStore ObjectStore `json:"objectStore"`
	Stripe      Stripe      `json:"stripe"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Access      Access      `json:"access"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ObjectStore struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

type Stripe struct {
	SecretKey     string `json:"secretKey"`
	WebhookSecret string `json:"webhookSecret"`
}

type Pubsub struct {
	ProjectID      string `json:"projectID"`
	PurchasesTopic string `json:"purchasesTopic"`
	VideosTopic    string `json:"videosTopic"`
}

type ServiceBus struct {
	Namespace      string `json:"namespace"`
	TranscodeQueue string `json:"transcodeQueue"`
}

type Access struct {
	RateLimitPerHour int `json:"rateLimitPerHour"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}

	if C.Database.MySql.Name == "" {
		C.Database.MySql.Name = os.Getenv("MYSQL_DB_NAME")
	}
	if C.Database.MySql.Host == "" {
		C.Database.MySql.Host = os.Getenv("MYSQL_HOST")
	}
	if C.Database.MySql.User == "" {
		C.Database.MySql.User = os.Getenv("MYSQL_USER")
	}
	if C.Database.MySql.Password == "" {
		C.Database.MySql.Password = os.Getenv("MYSQL_PASSWORD")
	}
	if C.Database.MySql.Port == "" {
		C.Database.MySql.Port = os.Getenv("MYSQL_PORT")
	}
	if C.Database.MySql.Port == "" {
		C.Database.MySql.Port = "3306"
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}

	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		C.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		C.Stripe.WebhookSecret = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		C.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		C.ObjectStore.Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		C.ObjectStore.Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		C.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		C.ObjectStore.SecretKey = v
	}
	if C.ObjectStore.Region == "" {
		C.ObjectStore.Region = "us-east-1"
	}

	if v := os.Getenv("RATE_LIMIT_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			C.Access.RateLimitPerHour = n
		}
	}
	if C.Access.RateLimitPerHour == 0 {
		C.Access.RateLimitPerHour = 100
	}

	if C.Pubsub.PurchasesTopic == "" {
		C.Pubsub.PurchasesTopic = "purchase-events"
	}
	if C.Pubsub.VideosTopic == "" {
		C.Pubsub.VideosTopic = "video-events"
	}
	if C.ServiceBus.TranscodeQueue == "" {
		C.ServiceBus.TranscodeQueue = "transcode-jobs"
	}

	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	if C.Stripe.WebhookSecret == "" {
		logger.GetLogger().Warn("Stripe.WebhookSecret not set; payment webhooks will be rejected.")
	}
}
