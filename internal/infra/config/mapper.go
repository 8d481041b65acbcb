package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/app/template"
	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// MapConfig overlays the DTO on domain.DefaultConfig and validates the result.
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	d := &cfg.Device
	setString(&d.Kind, y.Device.Kind)
	setString(&d.Port, y.Device.Port)
	setInt(&d.Baud, y.Device.Baud)
	setInt(&d.SkipLines, y.Device.SkipLines)
	setString(&d.File, y.Device.File)
	setBool(&d.StrictMarkers, y.Device.StrictMarkers)
	if err := setDuration(&d.ReadTimeout, y.Device.ReadTimeout); err != nil {
		return domain.Config{}, invalidField(path, "device.read_timeout", err.Error())
	}

	setInt(&cfg.Window.Size, y.Window.Size)
	setInt(&cfg.Window.MaxWindows, y.Window.MaxWindows)
	setInt(&cfg.Window.QueueDepth, y.Window.QueueDepth)

	c := &cfg.Classifier
	setString(&c.Kind, y.Classifier.Kind)
	setString(&c.URL, y.Classifier.URL)
	setString(&c.ProbabilitiesPath, y.Classifier.ProbabilitiesPath)
	setString(&c.Model, y.Classifier.Model)
	if err := setDuration(&c.Timeout, y.Classifier.Timeout); err != nil {
		return domain.Config{}, invalidField(path, "classifier.timeout", err.Error())
	}

	if y.Labels != nil {
		cfg.Labels = domain.LabelTable(append([]string(nil), y.Labels...))
	}

	a := &cfg.Alert
	setBool(&a.Enabled, y.Alert.Enabled)
	setString(&a.Patient, y.Alert.Patient)
	setString(&a.To, y.Alert.To)
	setString(&a.From, y.Alert.From)
	setString(&a.VoiceURL, y.Alert.VoiceURL)
	setString(&a.Message, y.Alert.Message)
	setString(&a.Twilio.AccountSID, y.Alert.Twilio.AccountSID)
	setString(&a.Twilio.AuthToken, y.Alert.Twilio.AuthToken)

	m := &cfg.Publish.MQTT
	setString(&m.Broker, y.Publish.MQTT.Broker)
	setString(&m.ClientID, y.Publish.MQTT.ClientID)
	setString(&m.Topic, y.Publish.MQTT.Topic)
	setInt(&m.QoS, y.Publish.MQTT.QoS)
	setString(&m.Username, y.Publish.MQTT.Username)
	setString(&m.Password, y.Publish.MQTT.Password)

	setString(&cfg.History.DSN, y.History.DSN)

	setString(&cfg.API.Addr, y.API.Addr)
	setString(&cfg.API.JWTSecret, y.API.JWTSecret)
	if y.API.AllowOrigins != nil {
		cfg.API.AllowOrigins = append([]string(nil), y.API.AllowOrigins...)
	}

	setBool(&cfg.Masking.Enabled, y.Masking.Enabled)
	setString(&cfg.Paths.WindowsDir, y.Paths.WindowsDir)
	setString(&cfg.Paths.RunsDir, y.Paths.RunsDir)

	if err := Validate(path, cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints of a mapped config.
func Validate(path string, cfg domain.Config) error {
	switch cfg.Device.Kind {
	case domain.DeviceSerial:
		if strings.TrimSpace(cfg.Device.Port) == "" {
			return invalidField(path, "device.port", "port is required for serial devices")
		}
		if cfg.Device.Baud <= 0 {
			return invalidField(path, "device.baud", "must be positive")
		}
	case domain.DeviceFile:
		if strings.TrimSpace(cfg.Device.File) == "" {
			return invalidField(path, "device.file", "file is required for file devices")
		}
	default:
		return invalidField(path, "device.kind", fmt.Sprintf("unsupported kind %q (want serial or file)", cfg.Device.Kind))
	}
	if cfg.Device.ReadTimeout <= 0 {
		return invalidField(path, "device.read_timeout", "must be positive")
	}
	if cfg.Device.SkipLines < 0 {
		return invalidField(path, "device.skip_lines", "must not be negative")
	}

	if cfg.Window.Size <= 0 {
		return invalidField(path, "window.size", "must be positive")
	}
	if cfg.Window.MaxWindows < 0 {
		return invalidField(path, "window.max_windows", "must not be negative")
	}
	if cfg.Window.QueueDepth <= 0 {
		return invalidField(path, "window.queue_depth", "must be positive")
	}

	switch cfg.Classifier.Kind {
	case domain.ClassifierHTTP:
		if strings.TrimSpace(cfg.Classifier.URL) == "" {
			return invalidField(path, "classifier.url", "url is required for http classifiers")
		}
		if strings.TrimSpace(cfg.Classifier.ProbabilitiesPath) == "" {
			return invalidField(path, "classifier.probabilities_path", "must not be empty")
		}
	case domain.ClassifierLinear:
		if strings.TrimSpace(cfg.Classifier.Model) == "" {
			return invalidField(path, "classifier.model", "model is required for linear classifiers")
		}
	default:
		return invalidField(path, "classifier.kind", fmt.Sprintf("unsupported kind %q (want http or linear)", cfg.Classifier.Kind))
	}
	if cfg.Classifier.Timeout <= 0 {
		return invalidField(path, "classifier.timeout", "must be positive")
	}

	if len(cfg.Labels) == 0 {
		return invalidField(path, "labels", "at least one label is required")
	}
	for i, l := range cfg.Labels {
		if strings.TrimSpace(l) == "" {
			return invalidField(path, fmt.Sprintf("labels[%d]", i), "label must not be empty")
		}
	}

	if cfg.Alert.Enabled {
		if strings.TrimSpace(cfg.Alert.To) == "" {
			return invalidField(path, "alert.to", "recipient is required when alerts are enabled")
		}
		if strings.TrimSpace(cfg.Alert.From) == "" {
			return invalidField(path, "alert.from", "sender is required when alerts are enabled")
		}
	}

	for _, key := range template.Placeholders(cfg.Alert.Message) {
		if !slices.Contains(domain.AlertPlaceholders, key) {
			return invalidField(path, "alert.message", fmt.Sprintf("unknown placeholder {{%s}}", key))
		}
	}

	if q := cfg.Publish.MQTT.QoS; q < 0 || q > 2 {
		return invalidField(path, "publish.mqtt.qos", "must be 0, 1 or 2")
	}
	if cfg.Publish.MQTT.Broker != "" && strings.TrimSpace(cfg.Publish.MQTT.Topic) == "" {
		return invalidField(path, "publish.mqtt.topic", "topic is required when a broker is set")
	}

	if strings.TrimSpace(cfg.Paths.WindowsDir) == "" {
		return invalidField(path, "paths.windows_dir", "must not be empty")
	}
	if strings.TrimSpace(cfg.Paths.RunsDir) == "" {
		return invalidField(path, "paths.runs_dir", "must not be empty")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*v))
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
