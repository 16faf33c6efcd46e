// Package config handles meshtool configuration loading and management.
package config

// Config holds all meshtool settings.
type Config struct {
	Smooth  SmoothConfig  `yaml:"smooth"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// SmoothConfig holds topology-rebuild settings.
type SmoothConfig struct {
	// MaxAngle is the crease angle in degrees above which corners are not
	// merged during topology reconstruction.
	MaxAngle float32 `yaml:"max_angle"`
}

// ExportConfig holds OBJ export settings.
type ExportConfig struct {
	Dir string `yaml:"dir"` // Output directory for exported files
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Smooth: SmoothConfig{
			MaxAngle: 30,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
