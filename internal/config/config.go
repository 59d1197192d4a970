package config

import (
	"log/slog"
	"time"
)

// Config is the root configuration for devhelper.
type Config struct {
	Service ServiceConfig `json:"service"`
	Serve   ServeConfig   `json:"serve"`
	Events  EventsConfig  `json:"events"`
	TUI     TUIConfig     `json:"tui"`
}

// ServiceConfig points the client at the remote answer service.
type ServiceConfig struct {
	Endpoint string   `json:"endpoint"`          // base URL, /ask and /search are appended
	TopK     int      `json:"top_k"`             // sources requested per question (default: 5)
	Timeout  Duration `json:"timeout,omitempty"` // 0 waits indefinitely
}

// ServeConfig holds the development answer service settings.
type ServeConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Fixtures string `json:"fixtures"` // YAML fixtures file (default: $DEVHELPER_PATH/fixtures.yaml)
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int    `json:"buffer_size"`
	LogLevel   string `json:"log_level,omitempty"`
}

// Level returns the slog level named by LogLevel. Unknown names map to info.
func (e EventsConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TUIConfig holds terminal UI preferences.
type TUIConfig struct {
	GlamourStyle string `json:"glamour_style,omitempty"` // "dark", "light", "notty" or "auto"
	LogFile      string `json:"log_file,omitempty"`      // default: $DEVHELPER_PATH/tui.log
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "0" || s == "null" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
