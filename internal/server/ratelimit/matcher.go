package ratelimit

import "strings"

// unlimited lists the method+path pairs that never consume tokens.
var unlimited = map[string]bool{
	"GET /health": true,
}

// unlimitedRule is returned for unlimited endpoints; a zero Limit disables the bucket.
var unlimitedRule = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the rule for a request, or nil when the default limit applies.
//
// An exact path wins. Otherwise the longest rule path ending in "/" that prefixes the request path
// is used, so "/runs/" covers "/runs/{id}". A rule with an empty Method matches every method.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		rule := unlimitedRule
		return &rule
	}

	var best *EndpointConfig
	for i := range configs {
		rule := &configs[i]
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if rule.Path == path {
			return rule
		}
		if !strings.HasSuffix(rule.Path, "/") || !strings.HasPrefix(path, rule.Path) {
			continue
		}
		if best == nil || len(rule.Path) > len(best.Path) {
			best = rule
		}
	}
	return best
}
