package bundler

import (
	"testing"

	"github.com/schmitthub/clawker/internal/config"
	"gopkg.in/yaml.v3"
)

// testConfig parses a clawker.yaml snippet into a project config.
// The historical `name:` key is mapped onto the Project field.
func testConfig(t *testing.T, yamlStr string) *config.Config {
	t.Helper()

	var cfg config.Project
	if err := yaml.Unmarshal([]byte(yamlStr), &cfg); err != nil {
		t.Fatalf("parsing test config: %v", err)
	}

	var meta struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal([]byte(yamlStr), &meta); err == nil && cfg.Project == "" {
		cfg.Project = meta.Name
	}

	return &config.Config{Project: &cfg}
}
