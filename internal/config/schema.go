package config

import "sync"

// Project represents the root configuration structure for clawker.yaml.
type Project struct {
	Version      string       `yaml:"version" mapstructure:"version"`
	Project      string       `yaml:"project" mapstructure:"project"`
	DefaultImage string       `yaml:"default_image,omitempty" mapstructure:"default_image"`
	Build     BuildConfig     `yaml:"build" mapstructure:"build"`
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Security  SecurityConfig  `yaml:"security" mapstructure:"security"`
	Loop      *LoopConfig     `yaml:"loop,omitempty" mapstructure:"loop"`

	// Runtime context injected after loading (see project_runtime.go).
	projectEntry *ProjectEntry
	registry     *RegistryLoader
	worktreeMu   sync.RWMutex
}

// Config bundles the loaded project configuration with user settings into
// the single gateway value commands receive from the factory.
type Config struct {
	Project  *Project
	Settings *Settings
}

// NewConfigForTest assembles a config gateway from explicit parts.
func NewConfigForTest(project *Project, settings *Settings) *Config {
	return &Config{Project: project, Settings: settings}
}

// NewBlankConfig returns a gateway with an empty project and default settings.
func NewBlankConfig() *Config {
	return &Config{Project: &Project{}, Settings: DefaultSettings()}
}

// BuildConfig defines the container build configuration
type BuildConfig struct {
	Image        string              `yaml:"image" mapstructure:"image"`
	Dockerfile   string              `yaml:"dockerfile,omitempty" mapstructure:"dockerfile"`
	Packages     []string            `yaml:"packages,omitempty" mapstructure:"packages"`
	Context      string              `yaml:"context,omitempty" mapstructure:"context"`
	BuildArgs    map[string]string   `yaml:"build_args,omitempty" mapstructure:"build_args"`
	Instructions *DockerInstructions `yaml:"instructions,omitempty" mapstructure:"instructions"`
	Inject       *InjectConfig       `yaml:"inject,omitempty" mapstructure:"inject"`
}

// DockerInstructions represents type-safe Dockerfile instructions
type DockerInstructions struct {
	Copy        []CopyInstruction  `yaml:"copy,omitempty" mapstructure:"copy"`
	Env         map[string]string  `yaml:"env,omitempty" mapstructure:"env"`
	Labels      map[string]string  `yaml:"labels,omitempty" mapstructure:"labels"`
	Expose      []ExposePort       `yaml:"expose,omitempty" mapstructure:"expose"`
	Args        []ArgDefinition    `yaml:"args,omitempty" mapstructure:"args"`
	Volumes     []string           `yaml:"volumes,omitempty" mapstructure:"volumes"`
	Workdir     string             `yaml:"workdir,omitempty" mapstructure:"workdir"`
	Healthcheck *HealthcheckConfig `yaml:"healthcheck,omitempty" mapstructure:"healthcheck"`
	Shell       []string           `yaml:"shell,omitempty" mapstructure:"shell"`
	UserRun     []RunInstruction   `yaml:"user_run,omitempty" mapstructure:"user_run"`
	RootRun     []RunInstruction   `yaml:"root_run,omitempty" mapstructure:"root_run"`
}

// CopyInstruction represents a COPY instruction with optional chown/chmod
type CopyInstruction struct {
	Src   string `yaml:"src" mapstructure:"src"`
	Dest  string `yaml:"dest" mapstructure:"dest"`
	Chown string `yaml:"chown,omitempty" mapstructure:"chown"`
	Chmod string `yaml:"chmod,omitempty" mapstructure:"chmod"`
}

// ExposePort represents an EXPOSE instruction
type ExposePort struct {
	Port     int    `yaml:"port" mapstructure:"port"`
	Protocol string `yaml:"protocol,omitempty" mapstructure:"protocol"` // "tcp" or "udp", defaults to tcp
}

// ArgDefinition represents an ARG instruction
type ArgDefinition struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Default string `yaml:"default,omitempty" mapstructure:"default"`
}

// HealthcheckConfig represents HEALTHCHECK instruction
type HealthcheckConfig struct {
	Cmd         []string `yaml:"cmd" mapstructure:"cmd"`
	Interval    string   `yaml:"interval,omitempty" mapstructure:"interval"`
	Timeout     string   `yaml:"timeout,omitempty" mapstructure:"timeout"`
	StartPeriod string   `yaml:"start_period,omitempty" mapstructure:"start_period"`
	Retries     int      `yaml:"retries,omitempty" mapstructure:"retries"`
}

// RunInstruction represents a RUN command with OS-awareness
type RunInstruction struct {
	Cmd    string `yaml:"cmd,omitempty" mapstructure:"cmd"`       // Generic command for both OS
	Alpine string `yaml:"alpine,omitempty" mapstructure:"alpine"` // Alpine-specific command
	Debian string `yaml:"debian,omitempty" mapstructure:"debian"` // Debian-specific command
}

// InjectConfig defines injection points for arbitrary Dockerfile instructions
type InjectConfig struct {
	AfterFrom          []string `yaml:"after_from,omitempty" mapstructure:"after_from"`
	AfterPackages      []string `yaml:"after_packages,omitempty" mapstructure:"after_packages"`
	AfterUserSetup     []string `yaml:"after_user_setup,omitempty" mapstructure:"after_user_setup"`
	AfterUserSwitch    []string `yaml:"after_user_switch,omitempty" mapstructure:"after_user_switch"`
	AfterClaudeInstall []string `yaml:"after_claude_install,omitempty" mapstructure:"after_claude_install"`
	BeforeEntrypoint   []string `yaml:"before_entrypoint,omitempty" mapstructure:"before_entrypoint"`
}

// AgentConfig defines Claude agent-specific settings
type AgentConfig struct {
	Includes []string          `yaml:"includes,omitempty" mapstructure:"includes"`
	Env      map[string]string `yaml:"env,omitempty" mapstructure:"env"`
	EnvFile  []string          `yaml:"env_file,omitempty" mapstructure:"env_file"`
	FromEnv  []string          `yaml:"from_env,omitempty" mapstructure:"from_env"`
	Memory   string            `yaml:"memory,omitempty" mapstructure:"memory"`
	Editor   string            `yaml:"editor,omitempty" mapstructure:"editor"`
	Visual   string            `yaml:"visual,omitempty" mapstructure:"visual"`
	Shell    string            `yaml:"shell,omitempty" mapstructure:"shell"`

	// EnableSharedDir mounts the shared clawker directory into containers.
	EnableSharedDir *bool `yaml:"enable_shared_dir,omitempty" mapstructure:"enable_shared_dir"`

	// Git configures git credential forwarding into containers.
	Git *GitCredentialsConfig `yaml:"git,omitempty" mapstructure:"git"`

	// ClaudeCode configures how Claude Code itself is provisioned.
	ClaudeCode *ClaudeCodeConfig `yaml:"claude_code,omitempty" mapstructure:"claude_code"`
}

// SharedDirEnabled reports whether the shared directory mount is enabled.
// Disabled by default.
func (a *AgentConfig) SharedDirEnabled() bool {
	if a == nil || a.EnableSharedDir == nil {
		return false
	}
	return *a.EnableSharedDir
}

// GitCredentialsConfig controls git credential forwarding into containers.
type GitCredentialsConfig struct {
	// ForwardHTTPS forwards HTTPS git credentials through the host proxy.
	ForwardHTTPS *bool `yaml:"forward_https,omitempty" mapstructure:"forward_https"`
	// ForwardSSH forwards the SSH agent socket into the container.
	ForwardSSH *bool `yaml:"forward_ssh,omitempty" mapstructure:"forward_ssh"`
	// CopyGitConfig copies the host .gitconfig into the container.
	CopyGitConfig *bool `yaml:"copy_git_config,omitempty" mapstructure:"copy_git_config"`
}

// GitHTTPSEnabled reports whether HTTPS credential forwarding is active.
// Defaults to on, but always requires the host proxy to be running.
func (g *GitCredentialsConfig) GitHTTPSEnabled(hostProxyEnabled bool) bool {
	if !hostProxyEnabled {
		return false
	}
	if g == nil || g.ForwardHTTPS == nil {
		return true
	}
	return *g.ForwardHTTPS
}

// GitSSHEnabled reports whether SSH agent forwarding is active (default on).
func (g *GitCredentialsConfig) GitSSHEnabled() bool {
	if g == nil || g.ForwardSSH == nil {
		return true
	}
	return *g.ForwardSSH
}

// CopyGitConfigEnabled reports whether the host .gitconfig is copied in (default on).
func (g *GitCredentialsConfig) CopyGitConfigEnabled() bool {
	if g == nil || g.CopyGitConfig == nil {
		return true
	}
	return *g.CopyGitConfig
}

// ClaudeCodeConfig controls how Claude Code is provisioned inside containers.
type ClaudeCodeConfig struct {
	// UseHostAuth reuses the host's Claude Code credentials.
	UseHostAuth *bool `yaml:"use_host_auth,omitempty" mapstructure:"use_host_auth"`
	// Config controls how the agent's configuration directory is seeded.
	Config ClaudeCodeConfigOptions `yaml:"config,omitempty" mapstructure:"config"`
}

// ClaudeCodeConfigOptions selects the configuration seeding strategy.
type ClaudeCodeConfigOptions struct {
	// Strategy is "fresh" (empty config) or "copy" (copy from host).
	Strategy string `yaml:"strategy,omitempty" mapstructure:"strategy"`
}

// UseHostAuthEnabled reports whether host credentials are reused (default on).
func (c *ClaudeCodeConfig) UseHostAuthEnabled() bool {
	if c == nil || c.UseHostAuth == nil {
		return true
	}
	return *c.UseHostAuth
}

// ConfigStrategy returns the configuration seeding strategy (default "fresh").
func (c *ClaudeCodeConfig) ConfigStrategy() string {
	if c == nil || c.Config.Strategy == "" {
		return "fresh"
	}
	return c.Config.Strategy
}

// WorkspaceConfig defines workspace mounting behavior
type WorkspaceConfig struct {
	RemotePath  string `yaml:"remote_path" mapstructure:"remote_path"`
	DefaultMode string `yaml:"default_mode" mapstructure:"default_mode"`
}

// SecurityConfig defines optional security hardening settings
type SecurityConfig struct {
	Firewall *FirewallConfig `yaml:"firewall,omitempty" mapstructure:"firewall"`
	// EnableFirewall is the legacy flat toggle, superseded by firewall.enable.
	EnableFirewall bool     `yaml:"enable_firewall,omitempty" mapstructure:"enable_firewall"`
	DockerSocket   bool     `yaml:"docker_socket" mapstructure:"docker_socket"`
	AllowedDomains []string `yaml:"allowed_domains,omitempty" mapstructure:"allowed_domains"`
	CapAdd         []string `yaml:"cap_add,omitempty" mapstructure:"cap_add"`
}

// FirewallEnabled reports whether the egress firewall should run in containers
// built from this project. The structured firewall block wins over the legacy
// flat toggle when present.
func (s *SecurityConfig) FirewallEnabled() bool {
	if s.Firewall != nil {
		return s.Firewall.Enable
	}
	return s.EnableFirewall
}

// LoopConfig configures autonomous agent loop runs for a project.
type LoopConfig struct {
	MaxLoops               int    `yaml:"max_loops,omitempty" mapstructure:"max_loops"`
	StagnationThreshold    int    `yaml:"stagnation_threshold,omitempty" mapstructure:"stagnation_threshold"`
	TimeoutMinutes         int    `yaml:"timeout_minutes,omitempty" mapstructure:"timeout_minutes"`
	CallsPerHour           int    `yaml:"calls_per_hour,omitempty" mapstructure:"calls_per_hour"`
	OutputDeclineThreshold int    `yaml:"output_decline_threshold,omitempty" mapstructure:"output_decline_threshold"`
	LoopDelaySeconds       int    `yaml:"loop_delay_seconds,omitempty" mapstructure:"loop_delay_seconds"`
	HooksFile              string `yaml:"hooks_file,omitempty" mapstructure:"hooks_file"`
	AppendSystemPrompt     string `yaml:"append_system_prompt,omitempty" mapstructure:"append_system_prompt"`
}

// Mode represents the workspace mode
type Mode string

const (
	// ModeBind represents direct host mount (live sync)
	ModeBind Mode = "bind"
	// ModeSnapshot represents ephemeral volume copy (isolated)
	ModeSnapshot Mode = "snapshot"
)

// ParseMode converts a string to a Mode, returning an error if invalid
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bind", "":
		return ModeBind, nil
	case "snapshot":
		return ModeSnapshot, nil
	default:
		return "", &ValidationError{
			Field:   "mode",
			Message: "must be 'bind' or 'snapshot'",
			Value:   s,
		}
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}
