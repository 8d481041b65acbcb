package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "ecgwatch.yaml"

// Environment variables that override secrets from the file.
const (
	EnvTwilioAccountSID = "ECGWATCH_TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken  = "ECGWATCH_TWILIO_AUTH_TOKEN"
	EnvMQTTPassword     = "ECGWATCH_MQTT_PASSWORD"
	EnvAPIJWTSecret     = "ECGWATCH_API_JWT_SECRET"
	EnvHistoryDSN       = "ECGWATCH_HISTORY_DSN"
)

type loadOptions struct {
	getenv func(string) string
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithGetenv replaces os.Getenv, mainly for tests.
func WithGetenv(fn func(string) string) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.getenv = fn
		}
	}
}

// Load reads an ecgwatch.yaml file, applies environment overrides and validates the result.
func Load(path string, opts ...LoadOption) (domain.Config, error) {
	o := loadOptions{getenv: os.Getenv}
	for _, opt := range opts {
		opt(&o)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
			err = errors.Join(domain.ErrNotFound, err)
		}
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: kind,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	cfg, err := MapConfig(path, dto.ECGWatch)
	if err != nil {
		return domain.Config{}, err
	}
	applyEnv(&cfg, o.getenv)
	return cfg, nil
}

// LoadWorkspace loads <root>/ecgwatch.yaml.
func LoadWorkspace(root string, opts ...LoadOption) (domain.Config, error) {
	return Load(filepath.Join(root, FileName), opts...)
}

func applyEnv(cfg *domain.Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Alert.Twilio.AccountSID, EnvTwilioAccountSID)
	set(&cfg.Alert.Twilio.AuthToken, EnvTwilioAuthToken)
	set(&cfg.Publish.MQTT.Password, EnvMQTTPassword)
	set(&cfg.API.JWTSecret, EnvAPIJWTSecret)
	set(&cfg.History.DSN, EnvHistoryDSN)
}
