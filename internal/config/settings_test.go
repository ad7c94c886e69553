// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jandreu1/azure-pipelines-agent/internal/testutil"
)

func TestSettingsSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.toml")
	s := &AgentSettings{
		AgentName:  "build-агент-01",
		PoolName:   "Default",
		ServerURL:  "https://dev.example.com/org",
		WorkFolder: "_work",
	}

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() returned error: %v", err)
	}
	if *loaded != *s {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, s)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSettings(filepath.Join(t.TempDir(), "agent.toml"))
	if !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("LoadSettings() error = %v, want %v", err, ErrSettingsNotFound)
	}
}

func TestLoadSettingsRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.toml")
	testutil.MustWriteFile(t, path, []byte("agent_name = \"a1\"\nwork_folder = \"_work\"\nagent_nmae = \"oops\"\n"), 0o644)

	_, err := LoadSettings(path)
	if err == nil {
		t.Fatal("LoadSettings() succeeded, want strict decode error")
	}
	if !strings.Contains(err.Error(), "agent_nmae") {
		t.Errorf("LoadSettings() error = %v, want mention of the unknown field", err)
	}
}

func TestAgentSettingsIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings AgentSettings
		want     bool
	}{
		{
			name: "complete",
			settings: AgentSettings{
				AgentName:  "a1",
				ServerURL:  "https://dev.example.com",
				WorkFolder: "_work",
			},
			want: true,
		},
		{
			name:     "no server url",
			settings: AgentSettings{AgentName: "a1", WorkFolder: "_work"},
			want:     true,
		},
		{
			name:     "blank agent name",
			settings: AgentSettings{AgentName: "  ", WorkFolder: "_work"},
			want:     false,
		},
		{
			name:     "missing work folder",
			settings: AgentSettings{AgentName: "a1"},
			want:     false,
		},
		{
			name:     "relative server url",
			settings: AgentSettings{AgentName: "a1", WorkFolder: "_work", ServerURL: "dev.example.com"},
			want:     false,
		},
		{
			name:     "non-http scheme",
			settings: AgentSettings{AgentName: "a1", WorkFolder: "_work", ServerURL: "ftp://dev.example.com"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.settings.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v (%v), want %v", valid, errs, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidAgentSettings) {
				t.Errorf("IsValid() error = %v, want %v", errs[0], ErrInvalidAgentSettings)
			}
		})
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	s := &AgentSettings{AgentName: ""}
	err := s.Save(filepath.Join(t.TempDir(), "agent.toml"))
	if !errors.Is(err, ErrInvalidAgentSettings) {
		t.Fatalf("Save() error = %v, want %v", err, ErrInvalidAgentSettings)
	}
}

func TestSettingsPathUsesConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDirOverride(tmpDir)
	t.Cleanup(Reset)

	path, err := SettingsPath()
	if err != nil {
		t.Fatalf("SettingsPath() returned error: %v", err)
	}
	if want := filepath.Join(tmpDir, SettingsFileName); path != want {
		t.Errorf("SettingsPath() = %s, want %s", path, want)
	}
}
