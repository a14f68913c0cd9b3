package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	defaultTokenFile        = ".pickup/token"
	defaultCurrency         = "INR"
	defaultMerchantName     = "Garbage Management System"
	defaultCallbackHost     = "127.0.0.1"
	defaultCallbackTimeout  = 10 * time.Minute
	defaultGeoTimeout       = 10 * time.Second
	defaultLatitude         = 28.6139
	defaultLongitude        = 77.2090
	defaultAttachmentMaxLen = 5 << 20
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	API APIConfig `json:"api" yaml:"api"`

	Session SessionConfig `json:"session" yaml:"session"`

	// Payment configures the hosted checkout widget and its local callback server
	Payment *PaymentConfig `json:"payment" yaml:"payment"`

	// Maps holds the public key used for static center maps
	Maps *MapsConfig `json:"maps" yaml:"maps"`

	Geolocation *GeolocationConfig `json:"geolocation" yaml:"geolocation"`

	// QRCode configuration for checkout links and booking receipts
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	Attachment *AttachmentConfig `json:"attachment" yaml:"attachment"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// APIConfig defines how the remote booking API is reached
type APIConfig struct {
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
	UserAgent string `json:"userAgent" yaml:"userAgent"`
	RateLimit struct {
		RPS   float64 `json:"rps" yaml:"rps"`
		Burst int     `json:"burst" yaml:"burst"`
	} `json:"rateLimit" yaml:"rateLimit"`
}

// SessionConfig defines where the access token is persisted
type SessionConfig struct {
	TokenPath string `json:"tokenPath" yaml:"tokenPath"`
	// EncryptionKey seals the token file at rest; empty stores it in plain text
	EncryptionKey string `json:"encryptionKey" yaml:"encryptionKey"`
}

// PaymentConfig defines checkout widget configuration
type PaymentConfig struct {
	KeyID        string `json:"keyId" yaml:"keyId"`
	Currency     string `json:"currency" yaml:"currency"`
	MerchantName string `json:"merchantName" yaml:"merchantName"`
	ThemeColor   string `json:"themeColor" yaml:"themeColor"`
	ScriptURL    string `json:"scriptUrl" yaml:"scriptUrl"`
	Callback     struct {
		Host    string        `json:"host" yaml:"host"`
		Port    int           `json:"port" yaml:"port"`
		Timeout time.Duration `json:"timeout" yaml:"timeout"`
	} `json:"callback" yaml:"callback"`
}

// MapsConfig defines the maps widget key
type MapsConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// GeolocationConfig defines the best-effort position lookup
type GeolocationConfig struct {
	Enabled          bool          `json:"enabled" yaml:"enabled"`
	Endpoint         string        `json:"endpoint" yaml:"endpoint"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`
	DefaultLatitude  float64       `json:"defaultLatitude" yaml:"defaultLatitude"`
	DefaultLongitude float64       `json:"defaultLongitude" yaml:"defaultLongitude"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// AttachmentConfig limits the optional booking image
type AttachmentConfig struct {
	MaxBytes     int64    `json:"maxBytes" yaml:"maxBytes"`
	AllowedTypes []string `json:"allowedTypes" yaml:"allowedTypes"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment overrides, e.g. API_BASEURL -> api.baseUrl
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills optional sections so consumers never see nil
func (cfg *Config) applyDefaults() error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return errors.New("api.baseUrl is required")
	}
	if !strings.HasSuffix(cfg.API.BaseURL, "/") {
		cfg.API.BaseURL += "/"
	}

	if cfg.Session.TokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "resolve home directory")
		}
		cfg.Session.TokenPath = filepath.Join(home, defaultTokenFile)
	}

	if cfg.Payment == nil {
		cfg.Payment = &PaymentConfig{}
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = defaultCurrency
	}
	if cfg.Payment.MerchantName == "" {
		cfg.Payment.MerchantName = defaultMerchantName
	}
	if cfg.Payment.Callback.Host == "" {
		cfg.Payment.Callback.Host = defaultCallbackHost
	}
	if cfg.Payment.Callback.Timeout == 0 {
		cfg.Payment.Callback.Timeout = defaultCallbackTimeout
	}

	if cfg.Maps == nil {
		cfg.Maps = &MapsConfig{}
	}

	if cfg.Geolocation == nil {
		cfg.Geolocation = &GeolocationConfig{}
	}
	if cfg.Geolocation.Timeout == 0 {
		cfg.Geolocation.Timeout = defaultGeoTimeout
	}
	if cfg.Geolocation.DefaultLatitude == 0 && cfg.Geolocation.DefaultLongitude == 0 {
		cfg.Geolocation.DefaultLatitude = defaultLatitude
		cfg.Geolocation.DefaultLongitude = defaultLongitude
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"}
	}

	if cfg.Attachment == nil {
		cfg.Attachment = &AttachmentConfig{}
	}
	if cfg.Attachment.MaxBytes == 0 {
		cfg.Attachment.MaxBytes = defaultAttachmentMaxLen
	}
	if len(cfg.Attachment.AllowedTypes) == 0 {
		cfg.Attachment.AllowedTypes = []string{"image/jpeg", "image/png"}
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
