package backend

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/pane"
)

func testRequest() SpawnRequest {
	return SpawnRequest{
		AgentID:       "bob@alpha",
		Name:          "bob",
		TeamName:      "alpha",
		Prompt:        "do the thing",
		Model:         "balanced",
		AgentType:     "general-purpose",
		Color:         "blue",
		Cwd:           "/tmp/work",
		LeadSessionID: "sess-1",
	}
}

func TestShellQuote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"/usr/bin/claude", "/usr/bin/claude"},
		{"has space", "'has space'"},
		{"don't", `'don'\''t'`},
		{"", "''"},
		{"a;b", "'a;b'"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClaudeCodeResolveModelStrict(t *testing.T) {
	t.Parallel()
	v := newClaudeCodeVendor()
	got, err := v.resolveModel("powerful")
	if err != nil || got != "opus" {
		t.Errorf("resolveModel(powerful) = %q, %v; want opus", got, err)
	}
	if _, err := v.resolveModel("gpt-5"); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("resolveModel(gpt-5) err = %v, want invalid-argument", err)
	}
}

func TestOneShotResolveModelPassesThrough(t *testing.T) {
	t.Parallel()
	for _, factory := range []func() vendor{newCodexVendor, newGeminiVendor, newQwenVendor} {
		v := factory()
		got, err := v.resolveModel("my-custom-model")
		if err != nil || got != "my-custom-model" {
			t.Errorf("%s: resolveModel pass-through = %q, %v", v.name(), got, err)
		}
	}
}

func TestClaudeCodeBuildArgs(t *testing.T) {
	t.Parallel()
	v := newClaudeCodeVendor()
	req := testRequest()
	req.PlanModeRequired = true
	args := v.buildArgs("/usr/bin/claude", "sonnet", req)
	want := []string{
		"/usr/bin/claude",
		"--agent-id", "bob@alpha",
		"--agent-name", "bob",
		"--team-name", "alpha",
		"--agent-color", "blue",
		"--parent-session-id", "sess-1",
		"--agent-type", "general-purpose",
		"--model", "sonnet",
		"--plan-mode-required",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("buildArgs = %v, want %v", args, want)
	}
	env := v.buildEnv(req)
	if env["CLAUDECODE"] != "1" || env["CLAUDE_CODE_EXPERIMENTAL_AGENT_TEAMS"] != "1" {
		t.Errorf("buildEnv = %v", env)
	}
}

func TestCodexBuildArgsWithOutputFile(t *testing.T) {
	t.Parallel()
	v := newCodexVendor()
	req := testRequest()
	req.Extra = map[string]string{"output_last_message_path": "/tmp/out.txt"}
	args := v.buildArgs("/usr/bin/codex", "gpt-5.3-codex", req)
	want := []string{
		"/usr/bin/codex", "exec", "--model", "gpt-5.3-codex", "--full-auto",
		"-C", "/tmp/work", "--output-last-message", "/tmp/out.txt", "do the thing",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("buildArgs = %v, want %v", args, want)
	}
	if !v.outputFileCapable() {
		t.Error("codex should be output-file capable")
	}
	if v.interactive() {
		t.Error("codex should not be interactive")
	}
}

func TestGooseBuildArgsAddsProviderForTiers(t *testing.T) {
	t.Parallel()
	v := newGooseVendor()
	req := testRequest()
	req.Model = "balanced"
	args := v.buildArgs("/usr/bin/goose", "claude-sonnet-4.5", req)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--provider anthropic") {
		t.Errorf("tier model should add provider: %v", args)
	}

	req.Model = "claude-opus-4.6"
	args = v.buildArgs("/usr/bin/goose", "claude-opus-4.6", req)
	if strings.Contains(strings.Join(args, " "), "--provider") {
		t.Errorf("direct model should not add provider: %v", args)
	}
}

func TestAmpBuildArgsModeFlag(t *testing.T) {
	t.Parallel()
	v := newAmpVendor()
	args := v.buildArgs("/usr/bin/amp-cli", "rush", testRequest())
	want := []string{"/usr/bin/amp-cli", "-x", "do the thing", "--dangerously-allow-all", "-m", "rush"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("buildArgs = %v, want %v", args, want)
	}
	args = v.buildArgs("/usr/bin/amp-cli", "unknown-mode", testRequest())
	if strings.Contains(strings.Join(args, " "), "-m ") {
		t.Errorf("unknown mode should omit -m: %v", args)
	}
}

func TestBuiltinCatalogShape(t *testing.T) {
	t.Parallel()
	if len(builtinVendors) != 17 {
		t.Errorf("builtin vendor count = %d, want 17", len(builtinVendors))
	}
	interactive := 0
	fileCapable := 0
	for name, factory := range builtinVendors {
		v := factory()
		if v.name() != name {
			t.Errorf("vendor %q reports name %q", name, v.name())
		}
		if v.defaultModel() == "" {
			t.Errorf("vendor %q has no default model", name)
		}
		if len(v.supportedModels()) == 0 {
			t.Errorf("vendor %q has no supported models", name)
		}
		if v.interactive() {
			interactive++
		}
		if v.outputFileCapable() {
			fileCapable++
		}
		for _, tier := range []string{"fast", "balanced", "powerful"} {
			if _, err := v.resolveModel(tier); err != nil {
				t.Errorf("vendor %q cannot resolve tier %q: %v", name, tier, err)
			}
		}
	}
	if interactive != 1 {
		t.Errorf("interactive backend count = %d, want 1", interactive)
	}
	if fileCapable != 1 {
		t.Errorf("file-capable backend count = %d, want 1", fileCapable)
	}
}

func TestBuildEnvRejectsInvalidKey(t *testing.T) {
	t.Parallel()
	b := newBase(&cliVendor{
		vendorName: "broken",
		binary:     "broken",
		env: func(req SpawnRequest) map[string]string {
			return map[string]string{"BAD-KEY": "1"}
		},
	})
	if _, err := b.BuildEnv(testRequest()); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("BuildEnv err = %v, want invalid-argument", err)
	}
}

// fakeBackend satisfies Backend for registry tests without touching tmux
// or PATH.
type fakeBackend struct {
	name      string
	available bool
}

func (f *fakeBackend) Name() string                           { return f.name }
func (f *fakeBackend) BinaryName() string                     { return f.name }
func (f *fakeBackend) IsInteractive() bool                    { return false }
func (f *fakeBackend) SupportsOutputFile() bool               { return false }
func (f *fakeBackend) IsAvailable() bool                      { return f.available }
func (f *fakeBackend) DiscoverBinary() (string, error)        { return "/bin/" + f.name, nil }
func (f *fakeBackend) SupportedModels() []string              { return []string{"m1"} }
func (f *fakeBackend) DefaultModel() string                   { return "m1" }
func (f *fakeBackend) ResolveModel(name string) (string, error) { return name, nil }
func (f *fakeBackend) BuildCommand(req SpawnRequest) ([]string, error) {
	return []string{f.name}, nil
}
func (f *fakeBackend) BuildEnv(req SpawnRequest) (map[string]string, error) {
	return map[string]string{}, nil
}
func (f *fakeBackend) Spawn(req SpawnRequest) (SpawnResult, error) {
	return SpawnResult{ProcessHandle: "%0", BackendType: f.name}, nil
}
func (f *fakeBackend) HealthCheck(handle string) HealthStatus { return HealthStatus{Alive: true} }
func (f *fakeBackend) Kill(handle string) error               { return nil }
func (f *fakeBackend) GracefulShutdown(handle string, timeout time.Duration) bool {
	return true
}
func (f *fakeBackend) RetainPaneAfterExit(handle string) error { return nil }
func (f *fakeBackend) Capture(handle string, lines int) (string, error) {
	return "", nil
}
func (f *fakeBackend) Send(handle, text string, enter bool) error { return nil }
func (f *fakeBackend) WaitIdle(handle string, idleTime, timeout time.Duration) bool {
	return true
}
func (f *fakeBackend) ExecuteInPane(handle, command string, timeout time.Duration) (pane.ExecResult, error) {
	return pane.ExecResult{}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("fake", &fakeBackend{name: "fake", available: true})

	b, err := r.Get("fake")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Name() != "fake" {
		t.Errorf("Name = %q", b.Name())
	}
	if _, err := r.Get("missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Get(missing) err = %v, want not-found", err)
	}
	if got := r.ListAvailable(); !reflect.DeepEqual(got, []string{"fake"}) {
		t.Errorf("ListAvailable = %v", got)
	}
}

func TestRegistryDefaultBackend(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("zed", &fakeBackend{name: "zed", available: true})
	r.Register("abc", &fakeBackend{name: "abc", available: true})
	name, err := r.DefaultBackend()
	if err != nil || name != "abc" {
		t.Errorf("DefaultBackend = %q, %v; want abc (first sorted)", name, err)
	}

	r.Register("claude-code", &fakeBackend{name: "claude-code", available: true})
	name, err = r.DefaultBackend()
	if err != nil || name != "claude-code" {
		t.Errorf("DefaultBackend = %q, %v; want claude-code", name, err)
	}
}

func TestRegistryDefaultBackendEmpty(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.loaded = true
	if _, err := r.DefaultBackend(); !apperr.Is(err, apperr.KindExternalUnavailable) {
		t.Errorf("DefaultBackend on empty registry err = %v, want external-unavailable", err)
	}
}

func TestRegistryInfos(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("fake", &fakeBackend{name: "fake", available: true})
	infos := r.Infos()
	if len(infos) != 1 {
		t.Fatalf("Infos len = %d", len(infos))
	}
	if infos[0].Name != "fake" || !infos[0].Available || infos[0].DefaultModel != "m1" {
		t.Errorf("Infos[0] = %+v", infos[0])
	}
}

func TestRepeatedListAvailableIsStable(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("fake", &fakeBackend{name: "fake", available: true})
	first := r.ListAvailable()
	for i := 0; i < 3; i++ {
		if got := r.ListAvailable(); !reflect.DeepEqual(got, first) {
			t.Fatalf("ListAvailable changed between calls: %v vs %v", got, first)
		}
	}
}
