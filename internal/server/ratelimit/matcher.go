package ratelimit

import "strings"

// unlimitedRoutes are never throttled, keyed by "METHOD path".
var unlimitedRoutes = map[string]bool{
	"GET /health": true,
}

// MatchEndpoint picks the config for a request, or nil when none applies.
// An exact path wins; otherwise the longest prefix config (path ending in "/")
// wins, so "/runs/" covers "/runs/{id}". Methods compare case-insensitively.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	method = strings.ToUpper(method)
	if unlimitedRoutes[method+" "+path] {
		return &EndpointConfig{}
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if !strings.EqualFold(c.Method, method) {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) &&
			(prefix == nil || len(c.Path) > len(prefix.Path)) {
			prefix = c
		}
	}
	return prefix
}
