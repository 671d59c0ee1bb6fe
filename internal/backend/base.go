package backend

import (
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/pane"
)

// vendor supplies the per-CLI pieces of the Backend contract: identity,
// model catalog, and command/env construction. Everything lifecycle-shaped
// lives on base.
type vendor interface {
	name() string
	binaryName() string
	interactive() bool
	outputFileCapable() bool
	supportedModels() []string
	defaultModel() string
	resolveModel(name string) (string, error)
	buildArgs(binary, model string, req SpawnRequest) []string
	buildEnv(req SpawnRequest) map[string]string
}

// base composes a vendor with the pane controller to satisfy the full
// Backend contract.
type base struct {
	v     vendor
	panes *pane.Controller
}

func newBase(v vendor) *base {
	return &base{v: v, panes: pane.NewController()}
}

func (b *base) Name() string              { return b.v.name() }
func (b *base) BinaryName() string        { return b.v.binaryName() }
func (b *base) IsInteractive() bool       { return b.v.interactive() }
func (b *base) SupportsOutputFile() bool  { return b.v.outputFileCapable() }
func (b *base) SupportedModels() []string { return b.v.supportedModels() }
func (b *base) DefaultModel() string      { return b.v.defaultModel() }

func (b *base) ResolveModel(name string) (string, error) {
	return b.v.resolveModel(name)
}

func (b *base) IsAvailable() bool {
	_, err := exec.LookPath(b.v.binaryName())
	return err == nil
}

func (b *base) DiscoverBinary() (string, error) {
	path, err := exec.LookPath(b.v.binaryName())
	if err != nil {
		return "", apperr.ExternalUnavailable(
			"could not find %q on PATH; install %s or add it to PATH", b.v.binaryName(), b.v.name())
	}
	return path, nil
}

func (b *base) BuildCommand(req SpawnRequest) ([]string, error) {
	binary, err := b.DiscoverBinary()
	if err != nil {
		return nil, err
	}
	model, err := b.v.resolveModel(req.Model)
	if err != nil {
		return nil, err
	}
	return b.v.buildArgs(binary, model, req), nil
}

func (b *base) BuildEnv(req SpawnRequest) (map[string]string, error) {
	env := b.v.buildEnv(req)
	for key := range env {
		if !safeEnvKeyRe.MatchString(key) {
			return nil, apperr.InvalidArgument("invalid environment variable name %q", key)
		}
	}
	return env, nil
}

// Spawn composes `cd <cwd> && <env prefix> <quoted tokens>` and hands it to
// the pane controller as the pane's initial process. The returned pane id
// is the process handle.
func (b *base) Spawn(req SpawnRequest) (SpawnResult, error) {
	tokens, err := b.BuildCommand(req)
	if err != nil {
		return SpawnResult{}, err
	}
	env, err := b.BuildEnv(req)
	if err != nil {
		return SpawnResult{}, err
	}

	var parts []string
	parts = append(parts, "cd", shellQuote(req.Cwd), "&&")
	// Sorted env prefix keeps the composed command deterministic.
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+shellQuote(env[k]))
	}
	for _, tok := range tokens {
		parts = append(parts, shellQuote(tok))
	}
	cmdStr := strings.Join(parts, " ")

	sessionName := "teamctl-" + req.TeamName + "-" + req.Name
	paneID, err := b.panes.Launch(sessionName, cmdStr)
	if err != nil {
		return SpawnResult{}, apperr.SpawnFailed("creating pane for agent "+req.Name, err)
	}
	if paneID == "" {
		return SpawnResult{}, apperr.SpawnFailed("creating pane for agent "+req.Name, nil)
	}
	return SpawnResult{ProcessHandle: paneID, BackendType: b.v.name()}, nil
}

func (b *base) HealthCheck(handle string) HealthStatus {
	exists, err := b.panes.HasPane(handle)
	if err != nil || !exists {
		return HealthStatus{Alive: false, Detail: "pane not found"}
	}
	dead, err := b.panes.IsDead(handle)
	if err == nil && dead {
		return HealthStatus{Alive: false, Detail: "process exited (pane retained)"}
	}
	return HealthStatus{Alive: true, Detail: "pane check"}
}

func (b *base) Kill(handle string) error {
	return b.panes.Kill(handle)
}

func (b *base) GracefulShutdown(handle string, timeout time.Duration) bool {
	if err := b.panes.Send(handle, "\x03", false); err != nil {
		return false
	}
	return b.panes.WaitIdle(handle, time.Second, timeout)
}

func (b *base) RetainPaneAfterExit(handle string) error {
	return b.panes.RetainAfterExit(handle)
}

func (b *base) Capture(handle string, lines int) (string, error) {
	return b.panes.Capture(handle, lines)
}

func (b *base) Send(handle, text string, enter bool) error {
	return b.panes.Send(handle, text, enter)
}

func (b *base) WaitIdle(handle string, idleTime, timeout time.Duration) bool {
	return b.panes.WaitIdle(handle, idleTime, timeout)
}

func (b *base) ExecuteInPane(handle, command string, timeout time.Duration) (pane.ExecResult, error) {
	return b.panes.ExecuteInPane(handle, command, timeout)
}
