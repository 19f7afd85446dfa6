package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Event is the optional per-event preset loaded from EVENT_FILE. Zero
// values leave the environment defaults in place.
type Event struct {
	Name           string   `yaml:"name"`
	DefaultContext string   `yaml:"default_context"`
	SessionIDs     []string `yaml:"sessions,omitempty"`
	Countdown      int      `yaml:"countdown"`
	Lockout        struct {
		Attempts int    `yaml:"attempts"`
		Duration string `yaml:"duration"`
	} `yaml:"lockout"`
	SubmitCooldown string `yaml:"submit_cooldown"`
}

const exampleEventYAML = `# idea processor event preset
name: Exact Live Delft
default_context: Hoe maken we onze stad slimmer en groener?
sessions:
  - main
countdown: 10
lockout:
  attempts: 3
  duration: 30s
submit_cooldown: 60s
`

// ExampleEvent returns a commented preset that LoadEvent accepts
func ExampleEvent() string {
	return exampleEventYAML
}

// LoadEvent reads the preset at path. A missing path yields a nil Event.
func LoadEvent(path string) (*Event, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return ParseEvent(data)
}

func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := yaml.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event file: %w", err)
	}
	if ev.Countdown < 0 {
		return nil, fmt.Errorf("event countdown must not be negative")
	}
	if _, err := parseOptionalDuration(ev.Lockout.Duration); err != nil {
		return nil, fmt.Errorf("event lockout duration: %w", err)
	}
	if _, err := parseOptionalDuration(ev.SubmitCooldown); err != nil {
		return nil, fmt.Errorf("event submit cooldown: %w", err)
	}
	return &ev, nil
}

// Apply overlays the preset on c
func (ev *Event) Apply(c *Config) {
	if ev == nil {
		return
	}
	if ev.Lockout.Attempts > 0 {
		c.LockoutAttempts = ev.Lockout.Attempts
	}
	if d, _ := parseOptionalDuration(ev.Lockout.Duration); d > 0 {
		c.LockoutDuration = d
	}
	if d, _ := parseOptionalDuration(ev.SubmitCooldown); d > 0 {
		c.SubmitCooldown = d
	}
}

func parseOptionalDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
