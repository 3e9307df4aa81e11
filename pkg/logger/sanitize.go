package logger

import "strings"

// SanitizedClientKey masks the middle of a client key for logging
// (e.g. "client_17***_a1b2"). Keys are opaque but still identify a device,
// so full values stay out of shared log streams.
func SanitizedClientKey(clientKey string) string {
	if len(clientKey) <= 12 {
		return clientKey
	}
	return clientKey[:9] + "***" + clientKey[len(clientKey)-4:]
}

// SanitizeQueryString checks if a query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := map[string]bool{
		"pin":      true,
		"password": true,
		"token":    true,
		"secret":   true,
		"api_key":  true,
		"apikey":   true,
		"auth":     true,
	}

	query := strings.ToLower(rawQuery)
	for param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
