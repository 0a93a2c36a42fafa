// Package agent routes each analysis task to a configured LLM provider.
// Task types used by the analyzer: snapshot, trend, forecast,
// recommendation, assessment.
package agent

import (
	"context"
	"fmt"
	"sort"

	"creditagent/pkg/core/llm"
)

// Config is loaded from config/models.yaml.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig optionally pins one task type to a specific provider.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager holds the provider registry and the per-task overrides.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":   &llm.OpenAIProvider{},
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// RegisterProvider replaces or adds a provider, mainly so tests can inject
// a stub oracle.
func (m *Manager) RegisterProvider(name string, p llm.Provider) {
	m.providers[name] = p
}

// GetProvider resolves the provider for a task type: per-task override
// first, then the global active provider, then openai.
func (m *Manager) GetProvider(taskType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[taskType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["openai"]
}

// ExecutePrompt adapts the system prompt for the resolved provider and runs
// the generation.
func (m *Manager) ExecutePrompt(ctx context.Context, taskType, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(taskType)
	adapted := provider.AdaptInstructions(systemPrompt)
	return provider.GenerateResponse(ctx, prompt, adapted, options)
}

// SetGlobalProvider switches the default provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	return nil
}

// GetActiveProvider returns the current global provider name.
func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// Providers returns the registered provider names, sorted.
func (m *Manager) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
