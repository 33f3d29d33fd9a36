package config

import "strings"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// publicServicePrefixes lists gRPC services reachable without a token.
var publicServicePrefixes = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.v1.ServerReflection/",
	"/grpc.reflection.v1alpha.ServerReflection/",
}

// publicHTTPPaths lists JSON API paths reachable without a token.
var publicHTTPPaths = map[string]bool{
	"/healthz": true,
}

// GetSecurityLevel returns the security level for a given gRPC method
func GetSecurityLevel(method string) SecurityLevel {
	for _, prefix := range publicServicePrefixes {
		if strings.HasPrefix(method, prefix) {
			return SecurityPublic
		}
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}

// GetHTTPSecurityLevel returns the security level for a request path
func GetHTTPSecurityLevel(path string) SecurityLevel {
	if publicHTTPPaths[path] {
		return SecurityPublic
	}
	return SecurityAccess
}
