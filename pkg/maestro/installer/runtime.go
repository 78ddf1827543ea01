package installer

// RuntimeFlags seeds the tool and MCP switches of .maestro/config.json
// from what the probe found.
type RuntimeFlags struct {
	Codex              bool
	Gemini             bool
	SpecKit            bool
	OpenSpec           bool
	SequentialThinking bool
	Context7           bool
	OpenWebsearch      bool
	Serena             bool
}

// RuntimeConfig is the default .maestro/config.json. Field order is the
// file's key order.
type RuntimeConfig struct {
	Version string `json:"version"`
	Policy  struct {
		Preset string `json:"preset"`
		MCP    struct {
			MaxCalls        int    `json:"maxCalls"`
			SessionFollowUp string `json:"sessionFollowUp"`
			OutputGuidance  bool   `json:"outputGuidance"`
		} `json:"mcp"`
		Storage struct {
			SummaryMaxLines struct {
				Index    int `json:"index"`
				Detailed int `json:"detailed"`
			} `json:"summaryMaxLines"`
			KeyDecisions struct {
				MaxInState int `json:"maxInState"`
			} `json:"keyDecisions"`
			Consultations struct {
				MaxAge   string `json:"maxAge"`
				MaxCount int    `json:"maxCount"`
			} `json:"consultations"`
		} `json:"storage"`
	} `json:"policy"`
	Tools struct {
		Codex    bool `json:"codex"`
		Gemini   bool `json:"gemini"`
		SpecKit  bool `json:"specKit"`
		OpenSpec bool `json:"openspec"`
	} `json:"tools"`
	MCPServers struct {
		SequentialThinking bool `json:"sequentialThinking"`
		Context7           bool `json:"context7"`
		OpenWebsearch      bool `json:"openWebsearch"`
		Serena             bool `json:"serena"`
	} `json:"mcpServers"`
}

// DefaultRuntimeConfig returns the config written on first install.
func DefaultRuntimeConfig(flags RuntimeFlags) RuntimeConfig {
	var c RuntimeConfig
	c.Version = "1.0"
	c.Policy.Preset = "balanced"
	c.Policy.MCP.MaxCalls = 10
	c.Policy.MCP.SessionFollowUp = "balanced"
	c.Policy.MCP.OutputGuidance = true
	c.Policy.Storage.SummaryMaxLines.Index = 15
	c.Policy.Storage.SummaryMaxLines.Detailed = 150
	c.Policy.Storage.KeyDecisions.MaxInState = 10
	c.Policy.Storage.Consultations.MaxAge = "24h"
	c.Policy.Storage.Consultations.MaxCount = 20
	c.Tools.Codex = flags.Codex
	c.Tools.Gemini = flags.Gemini
	c.Tools.SpecKit = flags.SpecKit
	c.Tools.OpenSpec = flags.OpenSpec
	c.MCPServers.SequentialThinking = flags.SequentialThinking
	c.MCPServers.Context7 = flags.Context7
	c.MCPServers.OpenWebsearch = flags.OpenWebsearch
	c.MCPServers.Serena = flags.Serena
	return c
}
