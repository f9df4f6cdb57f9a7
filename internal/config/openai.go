package config

const (
	// FallbackModel is used when neither the request nor the environment
	// names a model.
	FallbackModel = "gpt-5"
)

// GetOpenAIKey returns the OpenAI API key, or "" when not configured.
// An empty key means the upstream is unavailable; callers decide how to
// surface that, so it is not fatal at load time.
func GetOpenAIKey() string {
	return GetEnvOrDefault("OPENAI_API_KEY", "")
}

// GetOpenAIModel returns the default model configured via environment,
// or "" when unset.
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", "")
}

// GetOpenAIBaseURL returns an override for the OpenAI API base URL.
// Used to point the client at a test double.
func GetOpenAIBaseURL() string {
	return GetEnvOrDefault("OPENAI_BASE_URL", "")
}
