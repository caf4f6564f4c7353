package common

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvModelPath         = "MODEL_PATH"
	EnvMetadataPath      = "METADATA_PATH"
	EnvDataPath          = "DATA_PATH"
	EnvAPIPort           = "API_PORT"
	EnvDashboardPort     = "DASHBOARD_PORT"
	EnvMetricsPort       = "METRICS_PORT"
	EnvAPIURL            = "API_URL"
	EnvLowRiskThreshold  = "LOW_RISK_THRESHOLD"
	EnvHighRiskThreshold = "HIGH_RISK_THRESHOLD"
	EnvTopFeatures       = "TOP_FEATURES"
	EnvBridgeTimeout     = "BRIDGE_TIMEOUT"
	EnvLogLevel          = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultModelPath         = "models/fraud_detection_model.pkl"
	DefaultMetadataPath      = "models/model_metadata.json"
	DefaultAPIPort           = 8000
	DefaultDashboardPort     = 8050
	DefaultMetricsPort       = 9090
	DefaultLowRiskThreshold  = 0.3
	DefaultHighRiskThreshold = 0.7
	DefaultTopFeatures       = 5
	DefaultAPIURL            = "http://localhost:8000"
)

// Validation limits
const (
	MinPort = 1024
	MaxPort = 65535
)
