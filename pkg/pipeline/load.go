// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileNames are the job-file names tried, in order, when no
// path is given on the command line.
var DefaultFileNames = []string{"job.yaml", "job.yml", "job.json"}

// ErrNoJobFile reports that Find exhausted the default names.
var ErrNoJobFile = errors.New("no job file found")

// Load decodes a job definition from data. The filename picks the
// format: ".json" decodes as JSON, everything else as YAML (which is a
// JSON superset, so extensionless input still accepts either).
func Load(data []byte, filename string) (*Job, error) {
	var job Job
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}

	job.normalize()
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &job, nil
}

// LoadFile reads and decodes the job definition at path.
func LoadFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return Load(data, filepath.Base(path))
}

// Find returns the first default-named job file in dir, or ErrNoJobFile.
func Find(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s (tried %s)", ErrNoJobFile, dir, strings.Join(DefaultFileNames, ", "))
}
