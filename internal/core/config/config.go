package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// StatusPort is the port for the local status server. 0 disables it.
	StatusPort int `mapstructure:"STATUS_PORT" default:"0"`
	// DBPath is the path to the SQLite database file holding notified orders.
	DBPath string `mapstructure:"DB_PATH" default:"orders.db"`
	// RedisURL enables the posting-detail cache when set.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Telegram holds the Telegram bot configuration.
	Telegram TelegramConfig `mapstructure:",squash"`

	// Ozon holds the Ozon Seller API configuration.
	Ozon OzonConfig `mapstructure:",squash"`

	// Monitor holds the order monitoring configuration.
	Monitor MonitorConfig `mapstructure:",squash"`
}

// TelegramConfig holds the credentials for the Telegram bot.
type TelegramConfig struct {
	// BotToken is the token issued by BotFather.
	BotToken string `mapstructure:"BOT_TOKEN" required:"true"`
	// AdminChatID is the chat that receives notifications and may issue commands.
	AdminChatID int64 `mapstructure:"ADMIN_CHAT_ID" required:"true"`
}

// OzonConfig holds the credentials for the Ozon Seller API.
type OzonConfig struct {
	// BaseURL is the Seller API endpoint.
	BaseURL string `mapstructure:"OZON_BASE_URL" default:"https://api-seller.ozon.ru"`
	// APIKey is the Seller API key.
	APIKey string `mapstructure:"OZON_API_KEY" required:"true"`
	// ClientID is the seller account identifier.
	ClientID string `mapstructure:"OZON_CLIENT_ID" required:"true"`
}

// MonitorConfig holds the polling loop settings.
type MonitorConfig struct {
	// IntervalSeconds is the delay between order checks.
	IntervalSeconds int `mapstructure:"MONITOR_INTERVAL_SECONDS" default:"300"`
	// MaxOrdersPerRequest caps how many postings are fetched per tick.
	MaxOrdersPerRequest int `mapstructure:"MAX_ORDERS_PER_REQUEST" default:"100"`
	// NotificationBatchSize caps how many postings appear in one message.
	NotificationBatchSize int `mapstructure:"NOTIFICATION_BATCH_SIZE" default:"5"`
	// NotifyOnStatusChange re-notifies a posting when its status changed.
	NotifyOnStatusChange bool `mapstructure:"NOTIFY_ON_STATUS_CHANGE" default:"false"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
