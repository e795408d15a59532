package config

// MaskToken returns a display-safe version of a secret: the first four
// characters followed by asterisks, or only asterisks for short values.
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}
