package domain

import "time"

// Device kinds.
const (
	DeviceSerial = "serial"
	DeviceFile   = "file"
)

// Classifier kinds.
const (
	ClassifierHTTP   = "http"
	ClassifierLinear = "linear"
)

// DefaultAlertMessage is used when no message template is configured.
const DefaultAlertMessage = "Alert: Patient {{patient}} is experiencing abnormal heart activity ({{label}}). Immediate attention required."

// AlertPlaceholders are the keys an alert message template may reference.
var AlertPlaceholders = []string{"patient", "label", "percent", "window"}

// Config represents the ecgwatch configuration loaded from ecgwatch.yaml.
type Config struct {
	Device     DeviceConfig
	Window     WindowConfig
	Classifier ClassifierConfig
	Labels     LabelTable
	Alert      AlertConfig
	Publish    PublishConfig
	History    HistoryConfig
	API        APIConfig
	Masking    MaskingConfig
	Paths      PathsConfig
}

// DeviceConfig selects and parameterizes the device link.
type DeviceConfig struct {
	Kind          string
	Port          string
	Baud          int
	ReadTimeout   time.Duration
	SkipLines     int
	File          string
	StrictMarkers bool
}

type WindowConfig struct {
	Size       int
	MaxWindows int // 0 means run until cancelled
	QueueDepth int
}

type ClassifierConfig struct {
	Kind              string
	URL               string
	ProbabilitiesPath string
	Timeout           time.Duration
	Model             string
}

type AlertConfig struct {
	Enabled  bool
	Patient  string
	To       string
	From     string
	VoiceURL string
	Message  string
	Twilio   TwilioConfig
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
}

type PublishConfig struct {
	MQTT MQTTConfig
}

type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      int
	Username string
	Password string
}

type HistoryConfig struct {
	DSN string
}

type APIConfig struct {
	Addr         string
	JWTSecret    string
	AllowOrigins []string
}

type MaskingConfig struct {
	Enabled bool
}

type PathsConfig struct {
	WindowsDir string
	RunsDir    string
}

// DefaultConfig provides sane defaults if ecgwatch.yaml is partially missing.
// Window size and device settings match the reference sensor (9600 baud, 188 samples).
func DefaultConfig() Config {
	return Config{
		Device: DeviceConfig{
			Kind:        DeviceSerial,
			Port:        "COM8",
			Baud:        9600,
			ReadTimeout: time.Second,
		},
		Window: WindowConfig{
			Size:       188,
			MaxWindows: 1,
			QueueDepth: 1,
		},
		Classifier: ClassifierConfig{
			Kind:              ClassifierHTTP,
			ProbabilitiesPath: "$.predictions[0]",
			Timeout:           10 * time.Second,
		},
		Labels: DefaultLabels(),
		Alert: AlertConfig{
			Enabled:  true,
			VoiceURL: "http://demo.twilio.com/docs/voice.xml",
			Message:  DefaultAlertMessage,
		},
		Publish: PublishConfig{
			MQTT: MQTTConfig{
				ClientID: "ecgwatch",
				Topic:    "ecgwatch/{device}/diagnosis",
				QoS:      1,
			},
		},
		API: APIConfig{
			AllowOrigins: []string{"*"},
		},
		Masking: MaskingConfig{Enabled: true},
		Paths: PathsConfig{
			WindowsDir: "windows",
			RunsDir:    "runs",
		},
	}
}

// WorkspaceSpec describes where a workspace is scaffolded.
type WorkspaceSpec struct {
	Root string
}
