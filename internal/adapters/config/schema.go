package config

// Daybookfile represents the structure of the daybook.yaml configuration file.
type Daybookfile struct {
	Remote    RemoteDTO              `yaml:"remote"`
	Toast     ToastDTO               `yaml:"toast"`
	App       AppDTO                 `yaml:"app"`
	Telemetry TelemetryDTO           `yaml:"telemetry"`
	Resources map[string]ResourceDTO `yaml:"resources"`
}

// RemoteDTO selects the remote store.
type RemoteDTO struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Timeout string `yaml:"timeout"`
}

// ToastDTO configures notifications.
type ToastDTO struct {
	TTL string `yaml:"ttl"`
}

// AppDTO describes the hosted application.
type AppDTO struct {
	URL string `yaml:"url"`
}

// TelemetryDTO configures tracing.
type TelemetryDTO struct {
	Trace bool `yaml:"trace"`
}

// ResourceDTO overrides the schema of one resource type.
type ResourceDTO struct {
	Ignore  []string  `yaml:"ignore"`
	Compare []string  `yaml:"compare"`
	Rules   []RuleDTO `yaml:"rules"`
}

// RuleDTO is a validation rule.
type RuleDTO struct {
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
}
