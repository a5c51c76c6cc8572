// Package config loads the demo wallet configuration from configs/config.yaml
// and the environment.
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const DefaultBaseURL = "https://voltageapi.com/v1"

// Voltage holds what the API client needs. It is validated once at startup
// and passed by value afterwards.
type Voltage struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	OrganizationID string `mapstructure:"organization_id"`
	EnvironmentID  string `mapstructure:"environment_id"`
	WalletID       string `mapstructure:"wallet_id"`
	LineOfCreditID string `mapstructure:"line_of_credit_id"`
	// Network is one of mutinynet, mainnet, testnet3, signet, testnet.
	Network string `mapstructure:"network"`
	// CashAssetGroupKey pins the asset offered on the asset rail.
	CashAssetGroupKey string        `mapstructure:"cash_asset"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

type Monitor struct {
	StatusInterval    time.Duration `mapstructure:"status_interval"`
	ReadinessInterval time.Duration `mapstructure:"readiness_interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type Server struct {
	Port         string        `mapstructure:"port"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	BalanceTTL   time.Duration `mapstructure:"balance_ttl"`
	// SessionIdle is how long a session with no running monitor is kept.
	SessionIdle time.Duration `mapstructure:"session_idle"`
}

type Config struct {
	Voltage Voltage `mapstructure:"voltage"`
	Monitor Monitor `mapstructure:"monitor"`
	Server  Server  `mapstructure:"server"`
}

// Error reports required settings that are absent. It is fatal: nothing
// talks to the network until the configuration is complete.
type Error struct {
	Missing []string
	Reason  string
}

func (e *Error) Error() string {
	if len(e.Missing) > 0 {
		return "missing required configuration: " + strings.Join(e.Missing, ", ")
	}
	return "invalid configuration: " + e.Reason
}

// Validate checks the required credentials and identifiers.
func (v Voltage) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"VOLTAGE_API_KEY", v.APIKey},
		{"VOLTAGE_ORGANIZATION_ID", v.OrganizationID},
		{"VOLTAGE_ENVIRONMENT_ID", v.EnvironmentID},
		{"VOLTAGE_WALLET_ID", v.WalletID},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	if v.BaseURL != "" {
		u, err := url.Parse(v.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &Error{Reason: "VOLTAGE_BASE_URL is not an absolute URL: " + v.BaseURL}
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("voltage.api_key", "")
	v.SetDefault("voltage.base_url", DefaultBaseURL)
	v.SetDefault("voltage.organization_id", "")
	v.SetDefault("voltage.environment_id", "")
	v.SetDefault("voltage.wallet_id", "")
	v.SetDefault("voltage.line_of_credit_id", "")
	v.SetDefault("voltage.network", "")
	v.SetDefault("voltage.cash_asset", "")
	v.SetDefault("voltage.request_timeout", 30*time.Second)

	v.SetDefault("monitor.status_interval", 2*time.Second)
	v.SetDefault("monitor.readiness_interval", time.Second)
	v.SetDefault("monitor.timeout", 60*time.Second)

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.balance_ttl", 30*time.Second)
	v.SetDefault("server.session_idle", 30*time.Minute)
}

// Load reads configs/config.yaml (optional) and overlays the environment:
// voltage.api_key is VOLTAGE_API_KEY, server.port is PORT, and so on.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return Config{}, errors.Wrap(err, "bind PORT")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config.yaml")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Voltage.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
