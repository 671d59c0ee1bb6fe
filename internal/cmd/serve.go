package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/toolsurface"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lead's tool server over stdio",
	Long: `Run the lead process: a newline-delimited JSON request/response loop
over stdin/stdout. Each request names a tool and its arguments:

  {"tool": "team_create", "args": {"teamName": "alpha"}}

Responses carry {"ok": true, "result": ...} or {"ok": false, "kind": ...,
"error": ...}. Only tools visible at the session's current gating tier are
callable; use {"tool": "__list__"} to see them.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type serveRequest struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

type serveResponse struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Kind   string      `json:"kind,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func runServe(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	surface := toolsurface.New(orch, toolsurface.NewSession())

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	out := json.NewEncoder(os.Stdout)

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		var req serveRequest
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(out, serveResponse{OK: false, Kind: apperr.KindInvalidArgument.String(), Error: "malformed request: " + err.Error()})
			continue
		}
		if req.Tool == "__list__" {
			writeResponse(out, serveResponse{OK: true, Result: surface.Tools()})
			continue
		}
		result, err := surface.Dispatch(req.Tool, req.Args)
		if err != nil {
			kind, _ := apperr.KindOf(err)
			writeResponse(out, serveResponse{OK: false, Kind: kind.String(), Error: err.Error()})
			continue
		}
		writeResponse(out, serveResponse{OK: true, Result: result})
	}
	return in.Err()
}

func writeResponse(out *json.Encoder, resp serveResponse) {
	if err := out.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "serve: writing response: %v\n", err)
	}
}
