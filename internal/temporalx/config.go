package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/utils"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	RetentionDays         int
	DialTimeout           time.Duration
	DialMaxWait           time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Address:   strings.TrimSpace(utils.GetEnv("TEMPORAL_ADDRESS", "", log)),
		Namespace: strings.TrimSpace(utils.GetEnv("TEMPORAL_NAMESPACE", "pension", log)),
		TaskQueue: strings.TrimSpace(utils.GetEnv("TEMPORAL_TASK_QUEUE", "pension", log)),

		ClientCertPath: strings.TrimSpace(utils.GetEnv("TEMPORAL_CLIENT_CERT_PATH", "", log)),
		ClientKeyPath:  strings.TrimSpace(utils.GetEnv("TEMPORAL_CLIENT_KEY_PATH", "", log)),
		ClientCAPath:   strings.TrimSpace(utils.GetEnv("TEMPORAL_CLIENT_CA_PATH", "", log)),

		AutoRegisterNamespace: utils.GetEnvAsBool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false, log),
		RetentionDays:         clampInt(utils.GetEnvAsInt("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7, log), 1, 365),
		DialTimeout:           time.Duration(utils.GetEnvAsInt("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5, log)) * time.Second,
		DialMaxWait:           time.Duration(utils.GetEnvAsInt("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60, log)) * time.Second,
	}
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) tlsEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
