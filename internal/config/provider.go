// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath loads exactly this file. Loading fails when the file
	// does not exist.
	ConfigFilePath string
	// ConfigDirPath looks for the config file under this directory instead
	// of the platform default.
	ConfigDirPath string
}

// Provider resolves the effective worker configuration.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// NewProvider returns a Provider backed by the on-disk CUE configuration.
func NewProvider() Provider {
	return diskProvider{}
}

type diskProvider struct{}

func (diskProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
