package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// agentEnv maps AgentConfig fields to environment variable names so each
// agent can be overridden independently.
type agentEnv struct {
	ProviderName string
	BaseURL      string
	Token        string
	Deployment   string
	APIVersion   string
	AuthType     string
	ModelName    string
}

var scanningAgentEnv = &agentEnv{
	ProviderName: "RECEIPTS_SCANNING_AGENT_PROVIDER_NAME",
	BaseURL:      "RECEIPTS_SCANNING_AGENT_BASE_URL",
	Token:        "RECEIPTS_SCANNING_AGENT_TOKEN",
	Deployment:   "RECEIPTS_SCANNING_AGENT_DEPLOYMENT",
	APIVersion:   "RECEIPTS_SCANNING_AGENT_API_VERSION",
	AuthType:     "RECEIPTS_SCANNING_AGENT_AUTH_TYPE",
	ModelName:    "RECEIPTS_SCANNING_AGENT_MODEL_NAME",
}

var databaseAgentEnv = &agentEnv{
	ProviderName: "RECEIPTS_DATABASE_AGENT_PROVIDER_NAME",
	BaseURL:      "RECEIPTS_DATABASE_AGENT_BASE_URL",
	Token:        "RECEIPTS_DATABASE_AGENT_TOKEN",
	Deployment:   "RECEIPTS_DATABASE_AGENT_DEPLOYMENT",
	APIVersion:   "RECEIPTS_DATABASE_AGENT_API_VERSION",
	AuthType:     "RECEIPTS_DATABASE_AGENT_AUTH_TYPE",
	ModelName:    "RECEIPTS_DATABASE_AGENT_MODEL_NAME",
}

// AgentsConfig holds the model configuration for each pipeline agent.
type AgentsConfig struct {
	Scanning gaconfig.AgentConfig `toml:"scanning"`
	Database gaconfig.AgentConfig `toml:"database"`
}

// Finalize applies defaults, environment variable overrides, and validation
// to both agent configs.
func (c *AgentsConfig) Finalize() error {
	if c.Scanning.Name == "" {
		c.Scanning.Name = "receipt-scanning-agent"
	}
	if c.Database.Name == "" {
		c.Database.Name = "receipt-database-agent"
	}
	if err := finalizeAgent(&c.Scanning, scanningAgentEnv); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	if err := finalizeAgent(&c.Database, databaseAgentEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// Merge overwrites each agent config from the overlay when the overlay
// defines a provider or model for it.
func (c *AgentsConfig) Merge(overlay *AgentsConfig) {
	mergeAgent(&c.Scanning, &overlay.Scanning)
	mergeAgent(&c.Database, &overlay.Database)
}

func mergeAgent(base, overlay *gaconfig.AgentConfig) {
	if overlay.Name != "" {
		base.Name = overlay.Name
	}
	if overlay.Provider != nil {
		base.Provider = overlay.Provider
	}
	if overlay.Model != nil {
		base.Model = overlay.Model
	}
}

// finalizeAgent applies the three-phase finalize pattern to a go-agents
// AgentConfig: defaults from go-agents DefaultAgentConfig, environment
// variable overrides, and validation.
func finalizeAgent(c *gaconfig.AgentConfig, env *agentEnv) error {
	loadAgentDefaults(c)
	loadAgentEnv(c, env)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if c.Model.Name == "" {
		c.Model.Name = "gpt-4o-mini"
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig, env *agentEnv) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(env.ProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(env.BaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(env.ModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(env.Token, "token")
	setOption(env.Deployment, "deployment")
	setOption(env.APIVersion, "api_version")
	setOption(env.AuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
