package catalog

// Tool describes an external CLI maestro workflows call into.
type Tool struct {
	Name        string
	Description string
	InstallCmd  string
	Required    bool
}

// Tools lists required tools first, then optional ones.
var Tools = []Tool{
	{Name: "uv", Description: "Python package runner (uvx launches MCP servers)", InstallCmd: "curl -LsSf https://astral.sh/uv/install.sh | sh", Required: true},
	{Name: "specify", Description: "spec-kit CLI for spec-driven workflows", InstallCmd: "pip install spec-kit", Required: true},
	{Name: "openspec", Description: "OpenSpec CLI for change proposals", InstallCmd: "pip install openspec", Required: true},
	{Name: "codex", Description: "OpenAI Codex CLI for second-opinion consults", InstallCmd: "npm i -g @openai/codex"},
	{Name: "gemini", Description: "Google Gemini CLI for second-opinion consults", InstallCmd: "npm i -g @google/gemini-cli"},
}

// MCPServer describes an MCP integration registered through `claude mcp add`.
type MCPServer struct {
	Name        string
	Description string
	AddCmd      string
	Recommended bool
}

// MCPServers lists core and recommended servers first, then optional ones.
var MCPServers = []MCPServer{
	{Name: "sequential-thinking", Description: "structured multi-step reasoning", AddCmd: "claude mcp add sequential-thinking -- npx -y @anthropic/sequential-thinking-mcp", Recommended: true},
	{Name: "context7", Description: "up-to-date library documentation", AddCmd: "claude mcp add context7 -- npx -y @upstash/context7-mcp@latest", Recommended: true},
	{Name: "open-websearch", Description: "multi-engine web search", AddCmd: "claude mcp add open-websearch -- npx -y open-websearch-mcp@latest", Recommended: true},
	{Name: "serena", Description: "semantic code navigation", AddCmd: "claude mcp add serena -- uvx serena-mcp"},
	{Name: "codex-mcp", Description: "Codex as an MCP server", AddCmd: "claude mcp add codex -- uvx codex-mcp"},
	{Name: "gemini-mcp", Description: "Gemini as an MCP server", AddCmd: "claude mcp add gemini -- uvx gemini-mcp"},
}

// Workflow command registration hints shown when a workflow is missing.
const (
	SpecKitInitCmd  = "specify init --here --ai claude"
	OpenSpecInitCmd = "openspec init --tools claude"
)
