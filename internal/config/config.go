package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	OperatorChatID   int64  `mapstructure:"TELEGRAM_OPERATOR_ID"`

	MenuBaseURL string   `mapstructure:"MENU_BASE_URL"`
	DiningHalls []string `mapstructure:"DINING_HALLS"`
	DefaultMeal string   `mapstructure:"DEFAULT_MEAL"`
	Timezone    string   `mapstructure:"TIMEZONE"`

	NotifyHour   int `mapstructure:"NOTIFY_HOUR"`
	NotifyMinute int `mapstructure:"NOTIFY_MINUTE"`

	SubscriptionsFile string `mapstructure:"SUBSCRIPTIONS_FILE"`

	ScrapeTimeout      time.Duration `mapstructure:"SCRAPE_TIMEOUT"`
	RenderTimeout      time.Duration `mapstructure:"RENDER_TIMEOUT"`
	RenderPollInterval time.Duration `mapstructure:"RENDER_POLL_INTERVAL"`
	MaxBrowserSessions int           `mapstructure:"MAX_BROWSER_SESSIONS"`
	ChromeHeadless     bool          `mapstructure:"CHROME_HEADLESS"`

	MetricsPort int `mapstructure:"METRICS_PORT"`

	ExternalRequestTimeout time.Duration `mapstructure:"EXTERNAL_REQUEST_TIMEOUT"`

	RetryCount           int           `mapstructure:"RETRY_COUNT"`
	RetryBackoff         time.Duration `mapstructure:"RETRY_BACKOFF"`
	RetryableStatusCodes []int         `mapstructure:"RETRYABLE_STATUS_CODES"`

	CBSlidingWindowSize        int           `mapstructure:"CB_SLIDING_WINDOW_SIZE"`
	CBMinimumRequiredCalls     int           `mapstructure:"CB_MINIMUM_REQUIRED_CALLS"`
	CBFailureRateThreshold     int           `mapstructure:"CB_FAILURE_RATE_THRESHOLD"`
	CBPermittedCallsInHalfOpen int           `mapstructure:"CB_PERMITTED_CALLS_IN_HALF_OPEN"`
	CBWaitDurationInOpenState  time.Duration `mapstructure:"CB_WAIT_DURATION_IN_OPEN_STATE"`

	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

func LoadConfig() *Config {
	setDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return getDefaultConfig()
	}

	return config
}

func setDefaults() {
	viper.SetDefault("MENU_BASE_URL", "https://rdeapps.stanford.edu/dininghallmenu/")
	viper.SetDefault("DINING_HALLS", []string{"Stern Dining", "Wilbur Dining", "Arrillaga Family Dining Commons"})
	viper.SetDefault("DEFAULT_MEAL", "Lunch")
	viper.SetDefault("TIMEZONE", "America/Los_Angeles")

	viper.SetDefault("NOTIFY_HOUR", 9)
	viper.SetDefault("NOTIFY_MINUTE", 0)

	viper.SetDefault("SUBSCRIPTIONS_FILE", "subscriptions.json")

	viper.SetDefault("SCRAPE_TIMEOUT", "60s")
	viper.SetDefault("RENDER_TIMEOUT", "10s")
	viper.SetDefault("RENDER_POLL_INTERVAL", "250ms")
	viper.SetDefault("MAX_BROWSER_SESSIONS", 2)
	viper.SetDefault("CHROME_HEADLESS", true)

	viper.SetDefault("METRICS_PORT", 9094)

	viper.SetDefault("EXTERNAL_REQUEST_TIMEOUT", "10s")

	viper.SetDefault("RETRY_COUNT", 3)
	viper.SetDefault("RETRY_BACKOFF", "1s")
	viper.SetDefault("RETRYABLE_STATUS_CODES", []int{408, 429, 500, 502, 503, 504})

	viper.SetDefault("CB_SLIDING_WINDOW_SIZE", 10)
	viper.SetDefault("CB_MINIMUM_REQUIRED_CALLS", 5)
	viper.SetDefault("CB_FAILURE_RATE_THRESHOLD", 50)
	viper.SetDefault("CB_PERMITTED_CALLS_IN_HALF_OPEN", 2)
	viper.SetDefault("CB_WAIT_DURATION_IN_OPEN_STATE", "10s")

	viper.SetDefault("RATE_LIMIT_REQUESTS", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
}

func getDefaultConfig() *Config {
	return &Config{
		MenuBaseURL: "https://rdeapps.stanford.edu/dininghallmenu/",
		DiningHalls: []string{"Stern Dining", "Wilbur Dining", "Arrillaga Family Dining Commons"},
		DefaultMeal: "Lunch",
		Timezone:    "America/Los_Angeles",

		NotifyHour:   9,
		NotifyMinute: 0,

		SubscriptionsFile: "subscriptions.json",

		ScrapeTimeout:      60 * time.Second,
		RenderTimeout:      10 * time.Second,
		RenderPollInterval: 250 * time.Millisecond,
		MaxBrowserSessions: 2,
		ChromeHeadless:     true,

		MetricsPort: 9094,

		ExternalRequestTimeout: 10 * time.Second,

		RetryCount:           3,
		RetryBackoff:         1 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},

		CBSlidingWindowSize:        10,
		CBMinimumRequiredCalls:     5,
		CBFailureRateThreshold:     50,
		CBPermittedCallsInHalfOpen: 2,
		CBWaitDurationInOpenState:  10 * time.Second,

		RateLimitRequests: 5,
		RateLimitWindow:   1 * time.Minute,
	}
}
