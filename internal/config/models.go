package config

// LLMConfig represents the configuration for the judgment model provider
type LLMConfig struct {
	Provider string
	Enabled  bool
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// ServerConfig represents the frontend configuration
type ServerConfig struct {
	FrontendType      string
	ListenAddress     string
	EnableCORS        bool
	SMTPListenAddress string
	BlockHighRisk     bool
	RiskHeader        string
	ScoreHeader       string
	ReasonHeader      string
	RelayAddress      string
	RelayPort         int
	RelayEnabled      bool
	SubjectPrefix     string
	ModifySubject     bool
}

// PhishDBConfig represents the local phishing database configuration
type PhishDBConfig struct {
	Path string
}

// ReputationConfig represents the remote reputation lookup configuration
type ReputationConfig struct {
	Enabled        bool
	PrimaryURL     string
	FallbackURL    string
	Timeout        string
	MaxConcurrency int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
		Enabled:  c.GetBool("llm.enabled"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetServer returns the frontend configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FrontendType:      c.GetString("server.frontend_type"),
		ListenAddress:     c.GetString("server.listen_address"),
		EnableCORS:        c.GetBool("server.enable_cors"),
		SMTPListenAddress: c.GetString("server.smtp_listen_address"),
		BlockHighRisk:     c.GetBool("server.block_high_risk"),
		RiskHeader:        c.GetString("server.headers.risk"),
		ScoreHeader:       c.GetString("server.headers.score"),
		ReasonHeader:      c.GetString("server.headers.reason"),
		RelayAddress:      c.GetString("server.relay_address"),
		RelayPort:         c.GetInt("server.relay_port"),
		RelayEnabled:      c.GetBool("server.relay_enabled"),
		SubjectPrefix:     c.GetString("server.subject_prefix"),
		ModifySubject:     c.GetBool("server.modify_subject"),
	}
}

// GetPhishDB returns the local phishing database configuration
func (c *Config) GetPhishDB() PhishDBConfig {
	return PhishDBConfig{
		Path: c.GetString("phishdb.path"),
	}
}

// GetReputation returns the reputation lookup configuration
func (c *Config) GetReputation() ReputationConfig {
	return ReputationConfig{
		Enabled:        c.GetBool("reputation.enabled"),
		PrimaryURL:     c.GetString("reputation.primary_url"),
		FallbackURL:    c.GetString("reputation.fallback_url"),
		Timeout:        c.GetString("reputation.timeout"),
		MaxConcurrency: c.GetInt("reputation.max_concurrency"),
	}
}
