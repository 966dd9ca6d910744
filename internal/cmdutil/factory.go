package cmdutil

import (
	"context"
	"os"
	"sync"

	"github.com/schmitthub/clawker/internal/config"
	"github.com/schmitthub/clawker/internal/docker"
	"github.com/schmitthub/clawker/internal/iostreams"
	"github.com/schmitthub/clawker/internal/logger"
	"github.com/schmitthub/clawker/internal/prompter"
	"github.com/schmitthub/clawker/internal/tui"
)

// Factory provides shared dependencies for CLI commands.
// Expensive resources (Docker connection, config files) load lazily; the
// function fields let tests swap in fakes without touching the lazy caches.
type Factory struct {
	// Configuration from flags (set before command execution)
	WorkDir        string
	BuildOutputDir string // Directory for build artifacts (versions.json, dockerfiles)
	Debug          bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	// IO streams for input/output (for testability)
	IOStreams *iostreams.IOStreams

	// TUI renders interactive progress displays on top of IOStreams.
	TUI *tui.TUI

	// Client returns the Docker client (lazily connected, cached).
	Client func(context.Context) (*docker.Client, error)

	// Config returns the loaded config gateway (project + settings).
	// Never nil; outside a project it carries an empty Project.
	Config func() *config.Config

	// Settings returns the loaded user settings (lazily loaded, cached).
	Settings func() (*config.Settings, error)

	// Prompter builds an interactive prompter on the factory's IOStreams.
	Prompter func() *prompter.Prompter

	// Lazy caches behind the function fields above.
	clientOnce sync.Once
	client     *docker.Client
	clientErr  error

	configLoader *config.Loader
	configOnce   sync.Once
	configData   *config.Config

	settingsOnce   sync.Once
	settingsLoader config.SettingsLoader
	settingsData   *config.Settings
	settingsErr    error

	registryOnce   sync.Once
	registryLoader *config.RegistryLoader
	registryData   *config.ProjectRegistry
	registryErr    error

	resolutionOnce sync.Once
	resolution     *config.Resolution
}

// New creates a new Factory with the given version information.
func New(version, commit string) *Factory {
	ios := iostreams.NewIOStreams()

	// Auto-detect color support
	if ios.IsOutputTTY() {
		ios.DetectTerminalTheme()
		// Respect NO_COLOR environment variable
		if os.Getenv("NO_COLOR") != "" {
			ios.SetColorEnabled(false)
		}
	} else {
		ios.SetColorEnabled(false)
	}

	// Respect CI environment (disable prompts)
	if os.Getenv("CI") != "" {
		ios.SetNeverPrompt(true)
	}

	f := &Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
		TUI:       tui.NewTUI(ios),
	}
	f.Client = f.defaultClient
	f.Config = f.defaultConfig
	f.Settings = f.defaultSettings
	f.Prompter = f.defaultPrompter
	return f
}

// defaultClient connects to Docker once and caches the client.
func (f *Factory) defaultClient(ctx context.Context) (*docker.Client, error) {
	f.clientOnce.Do(func() {
		f.client, f.clientErr = docker.NewClient(ctx)
		if f.clientErr == nil && f.Config != nil {
			f.client.SetConfig(f.Config())
		}
	})
	return f.client, f.clientErr
}

// CloseClient closes the Docker client if it was initialized.
func (f *Factory) CloseClient() {
	if f.client != nil {
		f.client.Close()
	}
}

// ConfigLoader returns a config loader for the working directory.
// It uses registry-based resolution to determine the project root and
// loads user-level defaults from $CLAWKER_HOME/clawker.yaml.
func (f *Factory) ConfigLoader() *config.Loader {
	f.configOnce.Do(func() {
		var opts []config.LoaderOption

		// Use registry resolution to determine project root and key
		res := f.Resolution()
		if res.Found() {
			opts = append(opts,
				config.WithProjectRoot(res.ProjectRoot()),
				config.WithProjectKey(res.ProjectKey),
			)
		}

		// Enable user-level defaults from $CLAWKER_HOME/clawker.yaml
		opts = append(opts, config.WithUserDefaults(""))

		f.configLoader = config.NewLoader(f.WorkDir, opts...)
	})
	return f.configLoader
}

// defaultConfig loads the project config and settings into one gateway.
// The result is cached; ResetConfig clears it. Outside a project the gateway
// carries an empty Project so callers can still read zero values.
func (f *Factory) defaultConfig() *config.Config {
	if f.configData != nil {
		return f.configData
	}

	project, err := f.ConfigLoader().Load()
	if err != nil {
		logger.Debug().Err(err).Msg("no project config loaded; using empty project")
		project = &config.Project{}
	}

	// Attach registry context so RootDir and worktree helpers work.
	if res := f.Resolution(); res.Found() {
		if rl, rlErr := f.RegistryLoader(); rlErr == nil {
			entry := res.ProjectEntry
			project.SetRuntimeContext(&entry, rl)
		}
	}

	settings, err := f.Settings()
	if err != nil || settings == nil {
		settings = config.DefaultSettings()
	}

	f.configData = &config.Config{Project: project, Settings: settings}
	return f.configData
}

// ResetConfig clears the cached configuration, forcing a reload on next access.
func (f *Factory) ResetConfig() {
	f.configData = nil
}

// SettingsLoader returns the user settings loader (lazily initialized).
// If a project root is resolved from the registry, it enables project-level
// settings override via .clawker.settings.yaml.
func (f *Factory) SettingsLoader() (config.SettingsLoader, error) {
	f.settingsOnce.Do(func() {
		var opts []config.SettingsLoaderOption

		// Enable project-level settings override if in a project
		res := f.Resolution()
		if res.Found() {
			opts = append(opts, config.WithProjectSettingsRoot(res.ProjectRoot()))
		}

		f.settingsLoader, f.settingsErr = config.NewSettingsLoader(opts...)
	})
	return f.settingsLoader, f.settingsErr
}

// defaultSettings loads the user settings once and caches them.
func (f *Factory) defaultSettings() (*config.Settings, error) {
	if f.settingsData != nil || f.settingsErr != nil {
		return f.settingsData, f.settingsErr
	}
	loader, err := f.SettingsLoader()
	if err != nil {
		f.settingsErr = err
		return nil, err
	}
	f.settingsData, f.settingsErr = loader.Load()
	return f.settingsData, f.settingsErr
}

// InvalidateSettingsCache clears the cached settings, forcing a reload on next access.
// Note: This only clears the data cache, not the loader. The settings file path
// is determined at loader creation and remains fixed for the Factory lifetime.
func (f *Factory) InvalidateSettingsCache() {
	f.settingsData = nil
	f.settingsErr = nil
}

// RegistryLoader returns the project registry loader (lazily initialized).
func (f *Factory) RegistryLoader() (*config.RegistryLoader, error) {
	f.registryOnce.Do(func() {
		f.registryLoader, f.registryErr = config.NewRegistryLoader()
		if f.registryErr == nil {
			f.registryData, f.registryErr = f.registryLoader.Load()
		}
	})
	return f.registryLoader, f.registryErr
}

// Registry returns the loaded project registry (loads on first call).
func (f *Factory) Registry() (*config.ProjectRegistry, error) {
	if _, err := f.RegistryLoader(); err != nil {
		return nil, err
	}
	return f.registryData, f.registryErr
}

// Resolution returns the project resolution for the current working directory.
// Uses the registry to determine if WorkDir is inside a registered project.
// Never returns nil; returns an empty Resolution if no project is found.
func (f *Factory) Resolution() *config.Resolution {
	f.resolutionOnce.Do(func() {
		registry, err := f.Registry()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load project registry; operating without project context")
			f.resolution = &config.Resolution{WorkDir: f.WorkDir}
			return
		}
		if registry == nil {
			f.resolution = &config.Resolution{WorkDir: f.WorkDir}
			return
		}
		resolver := config.NewResolver(registry)
		f.resolution = resolver.Resolve(f.WorkDir)
	})
	return f.resolution
}

// defaultPrompter returns a new Prompter using the Factory's IOStreams.
// Use this for interactive user prompts that respect TTY detection.
func (f *Factory) defaultPrompter() *prompter.Prompter {
	return prompter.NewPrompter(f.IOStreams)
}
