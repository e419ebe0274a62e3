package config

import "encoding/json"

// MarshalJSON masks sensitive fields so a dumped configuration never leaks
// credentials. When adding new secrets to Config, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(c)
	if masked.PostgresPassword != "" {
		masked.PostgresPassword = "***"
	}
	if masked.ElevenLabsAPIKey != "" {
		masked.ElevenLabsAPIKey = "***"
	}
	return json.Marshal(masked)
}
