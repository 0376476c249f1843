package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`

	Forex   ForexConfig   `mapstructure:"forex"`
	Fees    FeesConfig    `mapstructure:"fees"`
	Customs CustomsConfig `mapstructure:"customs"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Cascade CascadeConfig `mapstructure:"cascade"`

	Sources  SourcesConfig  `mapstructure:"sources"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Features FeaturesConfig `mapstructure:"features"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
	EnableRLS       bool          `mapstructure:"enable_rls"`
}

// ForexConfig drives the pessimistic EUR/USD conversion. StaticRate is the
// fallback used whenever the live API is unavailable or unconfigured.
type ForexConfig struct {
	Buffer     decimal.Decimal `mapstructure:"buffer"`
	StaticRate decimal.Decimal `mapstructure:"static_rate"`
	APIKey     string          `mapstructure:"api_key"`
	APIBaseURL string          `mapstructure:"api_base_url"`
	CacheTTL   time.Duration   `mapstructure:"cache_ttl"`
	Timeout    time.Duration   `mapstructure:"timeout"`
}

type FeesConfig struct {
	TCGPlayerRate     decimal.Decimal `mapstructure:"tcgplayer_rate"`
	TCGPlayerCap      decimal.Decimal `mapstructure:"tcgplayer_cap"`
	TCGPlayerFixed    decimal.Decimal `mapstructure:"tcgplayer_fixed"`
	EBayRate          decimal.Decimal `mapstructure:"ebay_rate"`
	CardmarketProRate decimal.Decimal `mapstructure:"cardmarket_pro_rate"`
	ShippingUSD       decimal.Decimal `mapstructure:"shipping_usd"`
}

type CustomsConfig struct {
	Regime              string          `mapstructure:"regime"`
	USDeMinimisUSD      decimal.Decimal `mapstructure:"us_de_minimis_usd"`
	USStandardRate      decimal.Decimal `mapstructure:"us_standard_rate"`
	EUVATRate           decimal.Decimal `mapstructure:"eu_vat_rate"`
	EUFlatDutyEUR       decimal.Decimal `mapstructure:"eu_flat_duty_eur"`
	UKVATRate           decimal.Decimal `mapstructure:"uk_vat_rate"`
	UKLowValueThreshold decimal.Decimal `mapstructure:"uk_low_value_threshold_usd"`
}

// EngineConfig carries the rule thresholds. SellerDefaultMode controls what
// happens to listings with no seller data: "assume_default" substitutes
// DefaultSellerRating/Sales, "skip" bypasses the seller stage for that row.
type EngineConfig struct {
	MinProfitThreshold decimal.Decimal `mapstructure:"min_profit_threshold"`

	SellerDefaultMode   string          `mapstructure:"seller_default_mode"`
	MinSellerRating     decimal.Decimal `mapstructure:"min_seller_rating"`
	MinSellerSales      int             `mapstructure:"min_seller_sales"`
	DefaultSellerRating decimal.Decimal `mapstructure:"default_seller_rating"`
	DefaultSellerSales  int             `mapstructure:"default_seller_sales"`

	VelocityTier1Floor decimal.Decimal `mapstructure:"velocity_tier1_floor"`
	VelocityTier2Floor decimal.Decimal `mapstructure:"velocity_tier2_floor"`

	FallingKnifeThreshold decimal.Decimal `mapstructure:"falling_knife_threshold"`

	HeadacheTier1Floor decimal.Decimal `mapstructure:"headache_tier1_floor"`
	HeadacheTier2Floor decimal.Decimal `mapstructure:"headache_tier2_floor"`

	BundleAlertSDS      int             `mapstructure:"bundle_alert_sds"`
	BundlePartialMinSDS int             `mapstructure:"bundle_partial_min_sds"`
	BundleSingleCardMax decimal.Decimal `mapstructure:"bundle_single_card_max_usd"`
}

type ScanConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	MaxSignals       int           `mapstructure:"max_signals"`
	SignalTTL        time.Duration `mapstructure:"signal_ttl"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	BoostCadence     time.Duration `mapstructure:"boost_cadence"`
	BoostDuration    time.Duration `mapstructure:"boost_duration"`
	HistoryRetention time.Duration `mapstructure:"history_retention"`
}

type CascadeConfig struct {
	Cooldown      time.Duration `mapstructure:"cooldown"`
	MaxCascades   int           `mapstructure:"max_cascades"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type SourcesConfig struct {
	SetCodes []string `mapstructure:"set_codes"`

	JustTCG    SourceConfig `mapstructure:"justtcg"`
	PokemonTCG SourceConfig `mapstructure:"pokemontcg"`
	PokeTrace  SourceConfig `mapstructure:"poketrace"`
	EBay       EBayConfig   `mapstructure:"ebay"`

	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Cadence time.Duration `mapstructure:"cadence"`
}

type EBayConfig struct {
	AppID     string        `mapstructure:"app_id"`
	CertID    string        `mapstructure:"cert_id"`
	OAuthURL  string        `mapstructure:"oauth_url"`
	BrowseURL string        `mapstructure:"browse_url"`
	Cadence   time.Duration `mapstructure:"cadence"`
	CardLimit int           `mapstructure:"card_limit"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`

	BatchPace time.Duration `mapstructure:"batch_pace"`
}

type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type DiscordConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type FeaturesConfig struct {
	EnableLayer3Scraping bool `mapstructure:"enable_layer_3_scraping"`
	EnableLayer35Social  bool `mapstructure:"enable_layer_35_social"`
	EnableBundleLogic    bool `mapstructure:"enable_bundle_logic"`
}

// Load reads the yaml file at path, then applies RADAR_ prefixed env vars on
// top. envOnly skips the file entirely so the binary can run from env alone.
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if !envOnly {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	decode := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decode); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.enable_rls", false)

	v.SetDefault("forex.buffer", "0.02")
	v.SetDefault("forex.static_rate", "1.08")
	v.SetDefault("forex.api_base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("forex.cache_ttl", "15m")
	v.SetDefault("forex.timeout", "10s")

	v.SetDefault("fees.tcgplayer_rate", "0.1075")
	v.SetDefault("fees.tcgplayer_cap", "75.00")
	v.SetDefault("fees.tcgplayer_fixed", "0.30")
	v.SetDefault("fees.ebay_rate", "0.1325")
	v.SetDefault("fees.cardmarket_pro_rate", "0.05")
	v.SetDefault("fees.shipping_usd", "15.00")

	v.SetDefault("customs.regime", "pre_july_2026")
	v.SetDefault("customs.us_de_minimis_usd", "800.00")
	v.SetDefault("customs.us_standard_rate", "0.025")
	v.SetDefault("customs.eu_vat_rate", "0.21")
	v.SetDefault("customs.eu_flat_duty_eur", "3.00")
	v.SetDefault("customs.uk_vat_rate", "0.20")
	v.SetDefault("customs.uk_low_value_threshold_usd", "135.00")

	v.SetDefault("engine.min_profit_threshold", "5.00")
	v.SetDefault("engine.seller_default_mode", "assume_default")
	v.SetDefault("engine.min_seller_rating", "97.0")
	v.SetDefault("engine.min_seller_sales", 100)
	v.SetDefault("engine.default_seller_rating", "98.5")
	v.SetDefault("engine.default_seller_sales", 100)
	v.SetDefault("engine.velocity_tier1_floor", "1.5")
	v.SetDefault("engine.velocity_tier2_floor", "0.5")
	v.SetDefault("engine.falling_knife_threshold", "-0.10")
	v.SetDefault("engine.headache_tier1_floor", "15.00")
	v.SetDefault("engine.headache_tier2_floor", "5.00")
	v.SetDefault("engine.bundle_alert_sds", 5)
	v.SetDefault("engine.bundle_partial_min_sds", 2)
	v.SetDefault("engine.bundle_single_card_max_usd", "25.00")

	v.SetDefault("scan.interval", "30m")
	v.SetDefault("scan.max_signals", 50)
	v.SetDefault("scan.signal_ttl", "1h")
	v.SetDefault("scan.tick_interval", "5s")
	v.SetDefault("scan.boost_cadence", "30m")
	v.SetDefault("scan.boost_duration", "4h")
	v.SetDefault("scan.history_retention", "720h")

	v.SetDefault("cascade.cooldown", "10s")
	v.SetDefault("cascade.max_cascades", 5)
	v.SetDefault("cascade.sweep_interval", "5s")

	v.SetDefault("sources.set_codes", []string{"sv1", "sv2", "sv3", "sv3pt5"})
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("sources.retry_count", 3)
	v.SetDefault("sources.retry_wait_min", "1s")
	v.SetDefault("sources.retry_wait_max", "30s")
	v.SetDefault("sources.justtcg.base_url", "https://api.justtcg.com/v1")
	v.SetDefault("sources.justtcg.cadence", "6h")
	v.SetDefault("sources.pokemontcg.base_url", "https://api.pokemontcg.io/v2")
	v.SetDefault("sources.pokemontcg.cadence", "24h")
	v.SetDefault("sources.poketrace.base_url", "https://api.poketrace.com/v1")
	v.SetDefault("sources.poketrace.cadence", "12h")
	v.SetDefault("sources.ebay.oauth_url", "https://api.ebay.com/identity/v1/oauth2/token")
	v.SetDefault("sources.ebay.browse_url", "https://api.ebay.com/buy/browse/v1")
	v.SetDefault("sources.ebay.cadence", "12h")
	v.SetDefault("sources.ebay.card_limit", 50)

	v.SetDefault("notify.batch_pace", "1s")
	v.SetDefault("notify.telegram.base_url", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", "15s")
	v.SetDefault("notify.discord.base_url", "https://discord.com/api/v10")
	v.SetDefault("notify.discord.timeout", "15s")

	v.SetDefault("features.enable_layer_3_scraping", false)
	v.SetDefault("features.enable_layer_35_social", false)
	v.SetDefault("features.enable_bundle_logic", true)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook lets numeric thresholds be written as strings in yaml and env
// without losing precision to float64 round-trips.
func decimalHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != decimalType {
			return data, nil
		}
		switch val := data.(type) {
		case string:
			return decimal.NewFromString(val)
		case float64:
			return decimal.NewFromFloat(val), nil
		case int:
			return decimal.NewFromInt(int64(val)), nil
		}
		return data, nil
	}
}
