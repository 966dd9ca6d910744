package config

import "fmt"

// Settings represents user-level configuration stored in $CLAWKER_HOME/settings.yaml.
// Settings are global and apply across all clawker projects.
type Settings struct {
	// Logging configures file-based logging.
	// File logging is ENABLED by default - users can disable via settings.yaml.
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`

	// Monitoring configures the observability stack endpoints used by built
	// images (OTEL collector, Grafana, Prometheus, Loki, Jaeger).
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty" mapstructure:"monitoring"`

	// DefaultImage is the user's preferred default container image.
	// Set by 'clawker init' after building the base image.
	DefaultImage string `yaml:"default_image,omitempty" mapstructure:"default_image"`
}

// LoggingConfig configures file-based logging.
// File logging is ENABLED by default - users can disable via settings.yaml.
type LoggingConfig struct {
	// FileEnabled enables logging to file (default: true)
	// Set to false in settings.yaml to disable
	FileEnabled *bool `yaml:"file_enabled,omitempty" mapstructure:"file_enabled"`
	// MaxSizeMB is the max size in MB before rotation (default: 50)
	MaxSizeMB int `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	// MaxAgeDays is max days to retain old logs (default: 7)
	MaxAgeDays int `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
	// MaxBackups is max number of old log files to keep (default: 3)
	MaxBackups int `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
	// Compress enables gzip compression of rotated logs (default: true)
	Compress *bool `yaml:"compress,omitempty" mapstructure:"compress"`
	// Otel configures the OTEL zerolog bridge.
	Otel OtelConfig `yaml:"otel,omitempty" mapstructure:"otel"`
}

// OtelConfig configures log export through the OTEL collector.
type OtelConfig struct {
	// Enabled turns the OTEL log bridge on (default: true)
	Enabled *bool `yaml:"enabled,omitempty" mapstructure:"enabled"`
	// TimeoutSeconds is the export timeout (default: 5)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	// MaxQueueSize is the export queue bound (default: 2048)
	MaxQueueSize int `yaml:"max_queue_size,omitempty" mapstructure:"max_queue_size"`
	// ExportIntervalSeconds is the export flush interval (default: 5)
	ExportIntervalSeconds int `yaml:"export_interval_seconds,omitempty" mapstructure:"export_interval_seconds"`
}

// MonitoringConfig holds the ports and hostnames of the monitoring stack.
// Internal names resolve on the shared Docker network; host names resolve
// from the user's machine.
type MonitoringConfig struct {
	OtelCollectorHost     string          `yaml:"otel_collector_host,omitempty" mapstructure:"otel_collector_host"`
	OtelCollectorInternal string          `yaml:"otel_collector_internal,omitempty" mapstructure:"otel_collector_internal"`
	OtelCollectorPort     int             `yaml:"otel_collector_port,omitempty" mapstructure:"otel_collector_port"`
	LokiPort              int             `yaml:"loki_port,omitempty" mapstructure:"loki_port"`
	PrometheusPort        int             `yaml:"prometheus_port,omitempty" mapstructure:"prometheus_port"`
	PrometheusMetricsPort int             `yaml:"prometheus_metrics_port,omitempty" mapstructure:"prometheus_metrics_port"`
	JaegerPort            int             `yaml:"jaeger_port,omitempty" mapstructure:"jaeger_port"`
	GrafanaPort           int             `yaml:"grafana_port,omitempty" mapstructure:"grafana_port"`
	Telemetry             TelemetryConfig `yaml:"telemetry,omitempty" mapstructure:"telemetry"`
}

// TelemetryConfig controls agent telemetry emitted from inside containers.
type TelemetryConfig struct {
	MetricsPath            string `yaml:"metrics_path,omitempty" mapstructure:"metrics_path"`
	LogsPath               string `yaml:"logs_path,omitempty" mapstructure:"logs_path"`
	MetricExportIntervalMs int    `yaml:"metric_export_interval_ms,omitempty" mapstructure:"metric_export_interval_ms"`
	LogsExportIntervalMs   int    `yaml:"logs_export_interval_ms,omitempty" mapstructure:"logs_export_interval_ms"`
	LogToolDetails         *bool  `yaml:"log_tool_details,omitempty" mapstructure:"log_tool_details"`
	LogUserPrompts         *bool  `yaml:"log_user_prompts,omitempty" mapstructure:"log_user_prompts"`
	IncludeAccountUUID     *bool  `yaml:"include_account_uuid,omitempty" mapstructure:"include_account_uuid"`
	IncludeSessionID       *bool  `yaml:"include_session_id,omitempty" mapstructure:"include_session_id"`
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to true if not explicitly set.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c.FileEnabled == nil {
		return true // enabled by default
	}
	return *c.FileEnabled
}

// IsCompressEnabled returns whether rotated log compression is enabled.
// Defaults to true if not explicitly set.
func (c *LoggingConfig) IsCompressEnabled() bool {
	if c.Compress == nil {
		return true
	}
	return *c.Compress
}

// GetMaxSizeMB returns the max size in MB, defaulting to 50 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 50
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// IsEnabled returns whether the OTEL log bridge is enabled.
// Defaults to true if not explicitly set.
func (c *OtelConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// GetTimeoutSeconds returns the export timeout, defaulting to 5.
func (c *OtelConfig) GetTimeoutSeconds() int {
	if c.TimeoutSeconds <= 0 {
		return 5
	}
	return c.TimeoutSeconds
}

// GetMaxQueueSize returns the export queue bound, defaulting to 2048.
func (c *OtelConfig) GetMaxQueueSize() int {
	if c.MaxQueueSize <= 0 {
		return 2048
	}
	return c.MaxQueueSize
}

// GetExportIntervalSeconds returns the flush interval, defaulting to 5.
func (c *OtelConfig) GetExportIntervalSeconds() int {
	if c.ExportIntervalSeconds <= 0 {
		return 5
	}
	return c.ExportIntervalSeconds
}

// OtelCollectorEndpoint returns the host-side collector address (host:port).
func (c MonitoringConfig) OtelCollectorEndpoint() string {
	return fmt.Sprintf("%s:%d", c.OtelCollectorHost, c.OtelCollectorPort)
}

// OtelCollectorInternalURL returns the collector base URL resolvable on the
// shared Docker network.
func (c MonitoringConfig) OtelCollectorInternalURL() string {
	return fmt.Sprintf("http://%s:%d", c.OtelCollectorInternal, c.OtelCollectorPort)
}

// LokiInternalURL returns the Loki OTLP ingestion URL on the shared network.
func (c MonitoringConfig) LokiInternalURL() string {
	return fmt.Sprintf("http://loki:%d/otlp", c.LokiPort)
}

// GrafanaURL returns the host-side Grafana URL.
func (c MonitoringConfig) GrafanaURL() string {
	return fmt.Sprintf("http://localhost:%d", c.GrafanaPort)
}

// JaegerURL returns the host-side Jaeger UI URL.
func (c MonitoringConfig) JaegerURL() string {
	return fmt.Sprintf("http://localhost:%d", c.JaegerPort)
}

// PrometheusURL returns the host-side Prometheus URL.
func (c MonitoringConfig) PrometheusURL() string {
	return fmt.Sprintf("http://localhost:%d", c.PrometheusPort)
}

// GetMetricsPath returns the collector metrics path, defaulting to /v1/metrics.
func (c TelemetryConfig) GetMetricsPath() string {
	if c.MetricsPath == "" {
		return "/v1/metrics"
	}
	return c.MetricsPath
}

// GetLogsPath returns the collector logs path, defaulting to /v1/logs.
func (c TelemetryConfig) GetLogsPath() string {
	if c.LogsPath == "" {
		return "/v1/logs"
	}
	return c.LogsPath
}

// GetMetricExportIntervalMs returns the metric export interval, defaulting to 10000.
func (c TelemetryConfig) GetMetricExportIntervalMs() int {
	if c.MetricExportIntervalMs <= 0 {
		return 10000
	}
	return c.MetricExportIntervalMs
}

// GetLogsExportIntervalMs returns the logs export interval, defaulting to 5000.
func (c TelemetryConfig) GetLogsExportIntervalMs() int {
	if c.LogsExportIntervalMs <= 0 {
		return 5000
	}
	return c.LogsExportIntervalMs
}

// GetLogToolDetails reports whether tool invocation details are logged (default true).
func (c TelemetryConfig) GetLogToolDetails() bool {
	if c.LogToolDetails == nil {
		return true
	}
	return *c.LogToolDetails
}

// GetLogUserPrompts reports whether user prompt text is logged (default false).
func (c TelemetryConfig) GetLogUserPrompts() bool {
	if c.LogUserPrompts == nil {
		return false
	}
	return *c.LogUserPrompts
}

// GetIncludeAccountUUID reports whether metrics carry the account UUID (default true).
func (c TelemetryConfig) GetIncludeAccountUUID() bool {
	if c.IncludeAccountUUID == nil {
		return true
	}
	return *c.IncludeAccountUUID
}

// GetIncludeSessionID reports whether metrics carry the session id (default true).
func (c TelemetryConfig) GetIncludeSessionID() bool {
	if c.IncludeSessionID == nil {
		return true
	}
	return *c.IncludeSessionID
}

// DefaultSettings returns a Settings with sensible default values.
func DefaultSettings() *Settings {
	enabled := true
	return &Settings{
		Logging: LoggingConfig{
			FileEnabled: &enabled,
			MaxSizeMB:   50,
			MaxAgeDays:  7,
			MaxBackups:  3,
			Compress:    &enabled,
			Otel: OtelConfig{
				Enabled:               &enabled,
				TimeoutSeconds:        5,
				MaxQueueSize:          2048,
				ExportIntervalSeconds: 5,
			},
		},
		Monitoring: MonitoringConfig{
			OtelCollectorHost:     "localhost",
			OtelCollectorInternal: "otel-collector",
			OtelCollectorPort:     4318,
			LokiPort:              3100,
			PrometheusPort:        9090,
			PrometheusMetricsPort: 8889,
			JaegerPort:            16686,
			GrafanaPort:           3000,
		},
	}
}

// DefaultSettingsYAML is the scaffolded settings.yaml content.
const DefaultSettingsYAML = `# Clawker user settings
# Global settings applied across all clawker projects.

logging:
  # Write structured logs to $CLAWKER_HOME/logs (rotated)
  file_enabled: true
  max_size_mb: 50
  max_age_days: 7
  max_backups: 3
  compress: true

monitoring:
  # Ports for the local monitoring stack
  otel_collector_port: 4318
  grafana_port: 3000
  prometheus_port: 9090
  loki_port: 3100
  jaeger_port: 16686

# Default container image used when a project does not set build.image
# default_image: "clawker-default:latest"
`
