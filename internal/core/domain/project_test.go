package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/esmx/internal/core/domain"
)

func TestProjectConfig_Active(t *testing.T) {
	tests := []struct {
		name     string
		rng      string
		version  string
		expected bool
	}{
		{
			name:     "wildcard range activates any version",
			rng:      domain.RangeAll,
			version:  "0.0.1",
			expected: true,
		},
		{
			name:     "wildcard range activates unparsable versions",
			rng:      domain.RangeAll,
			version:  "dev",
			expected: true,
		},
		{
			name:     "caret range matches compatible revisions",
			rng:      "^3.0.0",
			version:  "3.2.0",
			expected: true,
		},
		{
			name:     "caret range rejects the next major",
			rng:      "^3.0.0",
			version:  "4.0.0",
			expected: false,
		},
		{
			name:     "compound range",
			rng:      ">=2.0.0 <3.0.0",
			version:  "2.7.1",
			expected: true,
		},
		{
			name:     "unparsable range gates to inactive",
			rng:      "not-a-range",
			version:  "3.2.0",
			expected: false,
		},
		{
			name:     "unparsable version gates to inactive",
			rng:      "^3.0.0",
			version:  "dev",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.ProjectConfig{RootPath: "/p", VersionRange: tt.rng}

			assert.Equal(t, tt.expected, cfg.Active(tt.version))
			// The memoized gate must answer consistently.
			assert.Equal(t, tt.expected, cfg.Active(tt.version))
		})
	}
}

func TestProjectConfig_CachePath(t *testing.T) {
	cfg := &domain.ProjectConfig{RootPath: "/p", Options: domain.DefaultOptions()}
	assert.Equal(t, domain.DefaultCachePath("/p"), cfg.CachePath())

	cfg.Options.CachePath = ".cache/custom"
	assert.Contains(t, cfg.CachePath(), "custom")
}
