package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/scanio-flaws/internal/config"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name         string
		flag, env    string
		wantPath     string
		wantExplicit bool
	}{
		{name: "flag wins", flag: "a.yml", env: "b.yml", wantPath: "a.yml", wantExplicit: true},
		{name: "environment", env: "b.yml", wantPath: "b.yml", wantExplicit: true},
		{name: "default", wantPath: config.DefaultConfigFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, explicit := resolveConfigPath(tt.flag, tt.env)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantExplicit, explicit)
		})
	}
}
