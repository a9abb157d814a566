package types

// LogLevel controls logger verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DeploymentMode names the process flavor for log/metric attribution.
type DeploymentMode string

const (
	DeploymentModeAPI    DeploymentMode = "api"
	DeploymentModeWorker DeploymentMode = "worker"
)
