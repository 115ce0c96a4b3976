package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved backend
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Teleton", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("rest_api", config.Backend.RESTAPI).
		Str("status_endpoint", config.StatusEndpoint()).
		Msg("Teleton admin service")
}
