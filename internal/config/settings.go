// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SettingsFileName is the agent settings file name inside the config directory.
const SettingsFileName = "agent.toml"

var (
	// ErrSettingsNotFound reports that no agent settings file exists yet.
	ErrSettingsNotFound = errors.New("agent settings not found")
	// ErrInvalidAgentSettings is the sentinel error wrapped by InvalidAgentSettingsError.
	ErrInvalidAgentSettings = errors.New("invalid agent settings")
)

type (
	// AgentSettings is the durable agent identity written by 'agent-worker
	// configure' and read back on every run. It is deliberately separate
	// from Config: settings describe who this agent is, config describes
	// how it behaves.
	AgentSettings struct {
		// AgentName identifies this agent to the server.
		AgentName string `toml:"agent_name"`
		// PoolName is the agent pool this agent registered with.
		PoolName string `toml:"pool_name"`
		// ServerURL is the collection URL of the server.
		ServerURL string `toml:"server_url"`
		// WorkFolder is the root directory for job working directories.
		WorkFolder string `toml:"work_folder"`
	}

	// InvalidAgentSettingsError is returned when an AgentSettings has invalid
	// fields. It wraps ErrInvalidAgentSettings for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidAgentSettingsError struct {
		FieldErrors []error
	}
)

// Error implements the error interface for InvalidAgentSettingsError.
func (e *InvalidAgentSettingsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid agent settings: %d field error(s)", len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		fmt.Fprintf(&b, "\n  - %v", err)
	}
	return b.String()
}

// Unwrap returns ErrInvalidAgentSettings for errors.Is() compatibility.
func (e *InvalidAgentSettingsError) Unwrap() error { return ErrInvalidAgentSettings }

// DefaultSettings returns settings seeded with the host name and the
// conventional work folder.
func DefaultSettings() *AgentSettings {
	name, err := os.Hostname()
	if err != nil {
		name = "agent"
	}
	return &AgentSettings{
		AgentName:  name,
		PoolName:   "Default",
		WorkFolder: "_work",
	}
}

// IsValid returns whether the AgentSettings has valid fields.
// AgentName and WorkFolder must be non-empty; ServerURL, when set,
// must be an absolute http(s) URL.
func (s *AgentSettings) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(s.AgentName) == "" {
		errs = append(errs, fmt.Errorf("agent_name: must be non-empty"))
	}
	if strings.TrimSpace(s.WorkFolder) == "" {
		errs = append(errs, fmt.Errorf("work_folder: must be non-empty"))
	}
	if s.ServerURL != "" {
		u, err := url.Parse(s.ServerURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("server_url: %q is not an absolute http(s) URL", s.ServerURL))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidAgentSettingsError{FieldErrors: errs}}
	}
	return true, nil
}

// SettingsPath returns the agent settings file path inside the config directory.
func SettingsPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, SettingsFileName), nil
}

// LoadSettings reads and validates the agent settings file at path.
// A missing file is reported as ErrSettingsNotFound so callers can
// direct the user to 'agent-worker configure'.
func LoadSettings(path string) (*AgentSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("failed to read agent settings: %w", err)
	}

	var s AgentSettings
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			// The generic message hides which key is unknown.
			return nil, fmt.Errorf("%s: unknown fields in agent settings:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if valid, errs := s.IsValid(); !valid {
		return nil, fmt.Errorf("%s: %w", path, errs[0])
	}

	return &s, nil
}

// Save writes the settings as TOML to path, creating parent directories
// as needed. Settings hold no secrets but identify the agent, so the
// file is not world-writable.
func (s *AgentSettings) Save(path string) error {
	if valid, errs := s.IsValid(); !valid {
		return errs[0]
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode agent settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write agent settings: %w", err)
	}

	return nil
}
