package middleware

import "strings"

// LoginPath is the only page rendered without a session.
const LoginPath = "/login"

// infraPrefixes never carry a browser session.
var infraPrefixes = []string{"/health", "/metrics", "/swagger", "/static", "/favicon.ico"}

// unguardedPrefixes carry a session but are not role-confined.
var unguardedPrefixes = []string{"/api", "/logout"}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// IsInfraPath reports whether path is served without session handling.
func IsInfraPath(path string) bool {
	return matchesAny(path, infraPrefixes)
}

func isGuarded(path string) bool {
	return !IsInfraPath(path) && !matchesAny(path, unguardedPrefixes)
}

// leadingSegment returns "teacher" for "/teacher/students/1".
func leadingSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
