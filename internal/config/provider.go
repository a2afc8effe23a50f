// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions carries the explicit inputs of one configuration load.
type LoadOptions struct {
	// ConfigFilePath, when set, loads exactly this file; the config
	// directory and working-directory lookups are skipped.
	ConfigFilePath string
	// ConfigDirPath replaces the platform config directory lookup.
	ConfigDirPath string
}

// Provider resolves build configuration on demand. The CLI's App holds one,
// so tests can substitute a canned implementation.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the file-backed Provider used in production.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
