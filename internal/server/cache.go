package server

import (
	"fmt"
	"strconv"

	"github.com/statscard/statscard/internal/config"
)

// staleWhileRevalidateSeconds lets CDNs serve a stale card for a day
// while refreshing in the background.
const staleWhileRevalidateSeconds = 86400

// noCacheValue is set on every error response; errors are never cached.
const noCacheValue = "no-cache, no-store, must-revalidate"

// clampCacheSeconds resolves the effective cache duration: the requested
// value if it parses, otherwise the process default, clamped into the
// configured bounds either way.
func clampCacheSeconds(requested string, defaultSeconds int) int {
	seconds := defaultSeconds
	if requested != "" {
		if v, err := strconv.Atoi(requested); err == nil {
			seconds = v
		}
	}
	return config.Clamp(seconds, config.MinCacheSeconds, config.MaxCacheSeconds)
}

// cacheHeaderValue builds the Cache-Control value for successful
// responses: browsers get half the duration, shared caches the full one.
func cacheHeaderValue(seconds int) string {
	return fmt.Sprintf("max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		seconds/2, seconds, staleWhileRevalidateSeconds)
}
