package application

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultPort is used when PORT is unset or unparsable.
	DefaultPort = 11024

	envPort       = "PORT"
	envProduction = "RAILWAY_ENVIRONMENT"
)

// Runtime holds operational parameters resolved from the environment. They
// control how the server is started, not what configuration it serves.
type Runtime struct {
	Port       int
	Production bool
}

// ResolveRuntime reads the listening port and deployment mode from the
// environment. A malformed PORT value falls back to the default with a
// warning instead of failing startup.
func ResolveRuntime(logger *zap.Logger) Runtime {
	rt := Runtime{Port: DefaultPort}

	if raw := strings.TrimSpace(os.Getenv(envPort)); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			logger.Warn("invalid PORT value, using default",
				zap.String("value", raw),
				zap.Int("default", DefaultPort),
			)
		} else {
			rt.Port = port
		}
	}

	// The platform sets RAILWAY_ENVIRONMENT on deployed instances; its mere
	// presence marks production.
	_, rt.Production = os.LookupEnv(envProduction)

	return rt
}
