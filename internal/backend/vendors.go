package backend

import (
	"strings"

	"github.com/agentteams/teamctl/internal/apperr"
)

// cliVendor is a table-driven vendor implementation. Every built-in
// backend is one of these: the flag conventions differ per CLI but the
// shape (binary + model map + argument template) is identical, so the
// per-vendor code is data plus an args closure.
type cliVendor struct {
	vendorName  string
	binary      string
	long        bool // interactive: long-lived, speaks the mailbox protocol itself
	fileCapable bool // accepts a dump-last-message-to-file flag
	strict      bool // reject unknown model names instead of passing through
	models      []string
	defModel    string
	modelMap    map[string]string
	args        func(binary, model string, req SpawnRequest) []string
	env         func(req SpawnRequest) map[string]string
}

func (v *cliVendor) name() string              { return v.vendorName }
func (v *cliVendor) binaryName() string        { return v.binary }
func (v *cliVendor) interactive() bool         { return v.long }
func (v *cliVendor) outputFileCapable() bool   { return v.fileCapable }
func (v *cliVendor) supportedModels() []string { return v.models }
func (v *cliVendor) defaultModel() string      { return v.defModel }

func (v *cliVendor) resolveModel(name string) (string, error) {
	if name == "" {
		name = v.defModel
	}
	if m, ok := v.modelMap[name]; ok {
		return m, nil
	}
	if v.strict {
		return "", apperr.InvalidArgument(
			"unsupported model %q for %s; supported: %s",
			name, v.vendorName, strings.Join(v.models, ", "))
	}
	return name, nil
}

func (v *cliVendor) buildArgs(binary, model string, req SpawnRequest) []string {
	return v.args(binary, model, req)
}

func (v *cliVendor) buildEnv(req SpawnRequest) map[string]string {
	if v.env == nil {
		return map[string]string{}
	}
	return v.env(req)
}

// builtinVendors maps each built-in backend name to its factory. The
// registry instantiates these lazily and keeps only the ones whose binary
// is on PATH.
var builtinVendors = map[string]func() vendor{
	"claude-code": newClaudeCodeVendor,
	"codex":       newCodexVendor,
	"gemini":      newGeminiVendor,
	"opencode":    newOpenCodeVendor,
	"aider":       newAiderVendor,
	"copilot":     newCopilotVendor,
	"auggie":      newAuggieVendor,
	"goose":       newGooseVendor,
	"qwen":        newQwenVendor,
	"vibe":        newVibeVendor,
	"kimi":        newKimiVendor,
	"amp":         newAmpVendor,
	"rovodev":     newRovoDevVendor,
	"llxprt":      newLlxprtVendor,
	"coder":       newCoderVendor,
	"claudish":    newClaudishVendor,
	"happy":       newHappyVendor,
}

// newClaudeCodeVendor is the sole interactive backend: a long-lived CLI
// that delivers its own messages through the mailbox protocol. It is also
// the only one that rejects unknown model names.
func newClaudeCodeVendor() vendor {
	return &cliVendor{
		vendorName: "claude-code",
		binary:     "claude",
		long:       true,
		strict:     true,
		models:     []string{"haiku", "sonnet", "opus"},
		defModel:   "sonnet",
		modelMap: map[string]string{
			"fast": "haiku", "balanced": "sonnet", "powerful": "opus",
			"haiku": "haiku", "sonnet": "sonnet", "opus": "opus",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			cmd := []string{
				binary,
				"--agent-id", req.AgentID,
				"--agent-name", req.Name,
				"--team-name", req.TeamName,
				"--agent-color", req.Color,
				"--parent-session-id", req.LeadSessionID,
				"--agent-type", req.AgentType,
				"--model", model,
			}
			if req.PlanModeRequired {
				cmd = append(cmd, "--plan-mode-required")
			}
			return cmd
		},
		env: func(req SpawnRequest) map[string]string {
			return map[string]string{
				"CLAUDECODE":                          "1",
				"CLAUDE_CODE_EXPERIMENTAL_AGENT_TEAMS": "1",
			}
		},
	}
}

// newCodexVendor is the one file-capable one-shot backend: it dumps its
// last assistant message to the path passed via Extra.
func newCodexVendor() vendor {
	return &cliVendor{
		vendorName:  "codex",
		binary:      "codex",
		fileCapable: true,
		models:      []string{"gpt-5.3-codex", "gpt-5.1-codex-max", "gpt-5.1-codex-mini"},
		defModel:    "gpt-5.3-codex",
		modelMap: map[string]string{
			"fast": "gpt-5.1-codex-mini", "balanced": "gpt-5.3-codex", "powerful": "gpt-5.1-codex-max",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			cmd := []string{binary, "exec", "--model", model, "--full-auto", "-C", req.Cwd}
			if path := req.Extra["output_last_message_path"]; path != "" {
				cmd = append(cmd, "--output-last-message", path)
			}
			return append(cmd, req.Prompt)
		},
	}
}

func newGeminiVendor() vendor {
	return &cliVendor{
		vendorName: "gemini",
		binary:     "gemini",
		models:     []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.0-flash"},
		defModel:   "gemini-2.5-flash",
		modelMap: map[string]string{
			"fast": "gemini-2.5-flash", "balanced": "gemini-2.5-pro", "powerful": "gemini-2.5-pro",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "--prompt", req.Prompt, "--model", model, "--yolo"}
		},
	}
}

func newOpenCodeVendor() vendor {
	return &cliVendor{
		vendorName: "opencode",
		binary:     "opencode",
		models: []string{
			"anthropic/claude-sonnet-4", "anthropic/claude-opus-4",
			"openai/gpt-5.3-codex", "google/gemini-2.5-pro",
		},
		defModel: "anthropic/claude-sonnet-4",
		modelMap: map[string]string{
			"fast": "anthropic/claude-haiku-3.5", "balanced": "anthropic/claude-sonnet-4",
			"powerful": "anthropic/claude-opus-4",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "run", "--model", model, req.Prompt}
		},
	}
}

func newAiderVendor() vendor {
	return &cliVendor{
		vendorName: "aider",
		binary:     "aider",
		models: []string{
			"claude-3.5-haiku", "claude-sonnet-4", "claude-opus-4",
			"gpt-5.3-codex", "gemini-2.5-pro",
		},
		defModel: "claude-sonnet-4",
		modelMap: map[string]string{
			"fast": "claude-3.5-haiku", "balanced": "claude-sonnet-4", "powerful": "claude-opus-4",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "--model", model, "--message", req.Prompt, "--yes-always"}
		},
	}
}

func newCopilotVendor() vendor {
	return &cliVendor{
		vendorName: "copilot",
		binary:     "copilot",
		models: []string{
			"claude-sonnet-4.5", "claude-haiku-4.5", "claude-opus-4.6", "claude-opus-4.5",
			"claude-sonnet-4", "gpt-5.2-codex", "gpt-5.2", "gpt-5.1-codex-max",
			"gpt-5.1-codex", "gpt-5.1", "gpt-5", "gpt-5-mini", "gpt-4.1",
			"gemini-3-pro-preview",
		},
		defModel: "claude-sonnet-4.5",
		modelMap: map[string]string{
			"fast": "claude-haiku-4.5", "balanced": "claude-sonnet-4.5", "powerful": "claude-opus-4.6",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "-p", req.Prompt, "--model", model, "--yolo", "--no-ask-user"}
		},
	}
}

func newAuggieVendor() vendor {
	return &cliVendor{
		vendorName: "auggie",
		binary:     "auggie",
		models:     []string{"claude-sonnet-4.5", "claude-opus-4.6", "gpt-5.2"},
		defModel:   "claude-sonnet-4.5",
		modelMap: map[string]string{
			"fast": "claude-haiku-4.5", "balanced": "claude-sonnet-4.5", "powerful": "claude-opus-4.6",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "-i", req.Prompt, "--model", model, "--print"}
		},
	}
}

// newGooseVendor maps generic tiers onto provider:model pairs; direct
// model names pass through with no provider flag.
func newGooseVendor() vendor {
	providerMap := map[string]string{
		"fast": "anthropic", "balanced": "anthropic", "powerful": "anthropic",
	}
	return &cliVendor{
		vendorName: "goose",
		binary:     "goose",
		models: []string{
			"claude-haiku-4.5", "claude-sonnet-4.5", "claude-opus-4.6",
			"gpt-5.2-codex", "gemini-2.5-pro",
		},
		defModel: "claude-sonnet-4.5",
		modelMap: map[string]string{
			"fast": "claude-haiku-4.5", "balanced": "claude-sonnet-4.5", "powerful": "claude-opus-4.6",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			cmd := []string{binary, "run", "-t", req.Prompt, "--model", model, "--no-session"}
			if provider := providerMap[req.Model]; provider != "" {
				cmd = append(cmd, "--provider", provider)
			}
			return cmd
		},
	}
}

func newQwenVendor() vendor {
	return &cliVendor{
		vendorName: "qwen",
		binary:     "qwen",
		models: []string{
			"qwen-turbo", "qwen-plus", "qwen-max",
			"claude-sonnet-4.5", "claude-opus-4.6", "gpt-5.2-codex", "gemini-2.5-pro",
		},
		defModel: "qwen-plus",
		modelMap: map[string]string{
			"fast": "qwen-turbo", "balanced": "qwen-plus", "powerful": "qwen-max",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "-p", req.Prompt, "-m", model, "-y"}
		},
	}
}

// newVibeVendor takes no model flag; model selection lives in its config file.
func newVibeVendor() vendor {
	return &cliVendor{
		vendorName: "vibe",
		binary:     "vibe",
		models:     []string{"devstral-2", "devstral-small"},
		defModel:   "devstral-2",
		modelMap: map[string]string{
			"fast": "devstral-small", "balanced": "devstral-2", "powerful": "devstral-2",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "-p", req.Prompt, "--output", "text"}
		},
	}
}

func newKimiVendor() vendor {
	return &cliVendor{
		vendorName: "kimi",
		binary:     "kimi",
		models:     []string{"kimi-k2", "kimi-k2-thinking", "kimi-k2-thinking-turbo"},
		defModel:   "kimi-k2-thinking",
		modelMap: map[string]string{
			"fast": "kimi-k2", "balanced": "kimi-k2-thinking", "powerful": "kimi-k2-thinking-turbo",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "--print", "-p", req.Prompt, "-m", model}
		},
	}
}

// newAmpVendor selects an execution mode rather than a model.
func newAmpVendor() vendor {
	return &cliVendor{
		vendorName: "amp",
		binary:     "amp-cli",
		models:     []string{"rush", "smart", "free"},
		defModel:   "smart",
		modelMap: map[string]string{
			"fast": "rush", "balanced": "smart", "powerful": "smart",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			cmd := []string{binary, "-x", req.Prompt, "--dangerously-allow-all"}
			switch model {
			case "free", "rush", "smart":
				cmd = append(cmd, "-m", model)
			}
			return cmd
		},
	}
}

// newRovoDevVendor takes no model flag; model selection lives in its config file.
func newRovoDevVendor() vendor {
	return &cliVendor{
		vendorName: "rovodev",
		binary:     "acli",
		models: []string{
			"gpt-5-2025-08-07", "gpt-5-mini-2025-08-07",
			"claude-opus-4-20250918", "claude-sonnet-4-20250514",
		},
		defModel: "gpt-5-2025-08-07",
		modelMap: map[string]string{
			"fast": "gpt-5-mini-2025-08-07", "balanced": "gpt-5-2025-08-07",
			"powerful": "claude-opus-4-20250918",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "rovodev", "run", "--yolo", req.Prompt}
		},
	}
}

func newLlxprtVendor() vendor {
	return &cliVendor{
		vendorName: "llxprt",
		binary:     "llxprt",
		models:     []string{"claude-haiku-4.5", "claude-sonnet-4.5", "claude-opus-4.6"},
		defModel:   "claude-sonnet-4.5",
		modelMap: map[string]string{
			"fast": "claude-haiku-4.5", "balanced": "claude-sonnet-4.5", "powerful": "claude-opus-4.6",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "-p", req.Prompt, "-m", model, "-y"}
		},
	}
}

func newCoderVendor() vendor {
	return &cliVendor{
		vendorName: "coder",
		binary:     "coder",
		models: []string{
			"claude-haiku-4.5", "claude-sonnet-4.5", "claude-opus-4.6",
			"gpt-5.2-codex", "gpt-5.2", "o3",
		},
		defModel: "claude-sonnet-4.5",
		modelMap: map[string]string{
			"fast": "claude-haiku-4.5", "balanced": "claude-sonnet-4.5", "powerful": "claude-opus-4.6",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "exec", "-m", model, "--full-auto", req.Prompt}
		},
	}
}

// newClaudishVendor routes provider@model identifiers to local or remote
// providers.
func newClaudishVendor() vendor {
	return &cliVendor{
		vendorName: "claudish",
		binary:     "claudish",
		models: []string{
			"google@gemini-2.5-flash", "google@gemini-3-pro",
			"oai@gpt-5.2", "oai@gpt-5.2-codex", "ollama@llama3.2",
		},
		defModel: "oai@gpt-5.2",
		modelMap: map[string]string{
			"fast": "google@gemini-2.5-flash", "balanced": "oai@gpt-5.2",
			"powerful": "google@gemini-3-pro",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "--model", model, "-y", req.Prompt}
		},
	}
}

func newHappyVendor() vendor {
	return &cliVendor{
		vendorName: "happy",
		binary:     "happy",
		models:     []string{"haiku", "sonnet", "opus"},
		defModel:   "sonnet",
		modelMap: map[string]string{
			"fast": "haiku", "balanced": "sonnet", "powerful": "opus",
		},
		args: func(binary, model string, req SpawnRequest) []string {
			return []string{binary, "--print", "--model", model, "--yolo", req.Prompt}
		},
	}
}
