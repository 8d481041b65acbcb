package config

// YAMLFile is the on-disk shape of ecgwatch.yaml. Pointer fields distinguish
// "not set" from zero values so defaults survive partial files.
type YAMLFile struct {
	ECGWatch YAMLConfig `yaml:"ecgwatch"`
}

type YAMLConfig struct {
	Device     YAMLDevice     `yaml:"device"`
	Window     YAMLWindow     `yaml:"window"`
	Classifier YAMLClassifier `yaml:"classifier"`
	Labels     []string       `yaml:"labels"`
	Alert      YAMLAlert      `yaml:"alert"`
	Publish    YAMLPublish    `yaml:"publish"`
	History    YAMLHistory    `yaml:"history"`
	API        YAMLAPI        `yaml:"api"`
	Masking    YAMLMasking    `yaml:"masking"`
	Paths      YAMLPaths      `yaml:"paths"`
}

type YAMLDevice struct {
	Kind          *string `yaml:"kind"`
	Port          *string `yaml:"port"`
	Baud          *int    `yaml:"baud"`
	ReadTimeout   *string `yaml:"read_timeout"`
	SkipLines     *int    `yaml:"skip_lines"`
	File          *string `yaml:"file"`
	StrictMarkers *bool   `yaml:"strict_markers"`
}

type YAMLWindow struct {
	Size       *int `yaml:"size"`
	MaxWindows *int `yaml:"max_windows"`
	QueueDepth *int `yaml:"queue_depth"`
}

type YAMLClassifier struct {
	Kind              *string `yaml:"kind"`
	URL               *string `yaml:"url"`
	ProbabilitiesPath *string `yaml:"probabilities_path"`
	Timeout           *string `yaml:"timeout"`
	Model             *string `yaml:"model"`
}

type YAMLAlert struct {
	Enabled  *bool      `yaml:"enabled"`
	Patient  *string    `yaml:"patient"`
	To       *string    `yaml:"to"`
	From     *string    `yaml:"from"`
	VoiceURL *string    `yaml:"voice_url"`
	Message  *string    `yaml:"message"`
	Twilio   YAMLTwilio `yaml:"twilio"`
}

type YAMLTwilio struct {
	AccountSID *string `yaml:"account_sid"`
	AuthToken  *string `yaml:"auth_token"`
}

type YAMLPublish struct {
	MQTT YAMLMQTT `yaml:"mqtt"`
}

type YAMLMQTT struct {
	Broker   *string `yaml:"broker"`
	ClientID *string `yaml:"client_id"`
	Topic    *string `yaml:"topic"`
	QoS      *int    `yaml:"qos"`
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
}

type YAMLHistory struct {
	DSN *string `yaml:"dsn"`
}

type YAMLAPI struct {
	Addr         *string  `yaml:"addr"`
	JWTSecret    *string  `yaml:"jwt_secret"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type YAMLMasking struct {
	Enabled *bool `yaml:"enabled"`
}

type YAMLPaths struct {
	WindowsDir *string `yaml:"windows_dir"`
	RunsDir    *string `yaml:"runs_dir"`
}
