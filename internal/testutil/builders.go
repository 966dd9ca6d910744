package testutil

import (
	"github.com/schmitthub/clawker/internal/config"
	"github.com/schmitthub/clawker/internal/config/configtest"
)

// ConfigBuilder is the fluent project-config builder used with
// WithConfigBuilder. It is the configtest builder under its historical name.
type ConfigBuilder = configtest.ProjectBuilder

// NewConfigBuilder creates a ConfigBuilder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return configtest.NewProjectBuilder()
}

// MinimalValidConfig returns a builder for the smallest config that passes
// validation: version, a base image, and a workspace path.
func MinimalValidConfig() *ConfigBuilder {
	return configtest.NewProjectBuilder().
		WithProject("testproj").
		WithBuild(config.BuildConfig{Image: "alpine:latest"})
}
