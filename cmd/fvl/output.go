package main

import (
	"encoding/json"
	"fmt"

	"github.com/fvl-lang/fvl/core"
)

// renderError formats err for stderr: `[ERROR] <kind>: <message>` in text
// mode, or {"error":{"kind":...,"message":...}} under --json. Errors
// without a Kind() are reported under kind "Internal".
func renderError(err error) string {
	kind, msg := "Internal", err.Error()
	if k, ok := err.(core.Kinded); ok {
		kind, msg = k.Kind(), k.Error()
	}
	if jsonOutput {
		out, _ := json.Marshal(map[string]any{"error": map[string]string{"kind": kind, "message": msg}})
		return string(out)
	}
	return fmt.Sprintf("[ERROR] %s: %s", kind, msg)
}

// exitCodeFor maps an error to the process exit code: 0 success (never
// reached here), 1 user error (bad input, admission/execution rejection),
// 2 internal error (I/O, log corruption, state divergence).
func exitCodeFor(err error) int {
	k, ok := err.(core.Kinded)
	if !ok {
		return 2
	}
	switch k.Kind() {
	case "StateDivergence", "LogCorruption", "IoFailure":
		return 2
	default:
		return 1
	}
}

// printResult renders v as indented JSON under --json, or invokes text for
// the human-readable form otherwise.
func printResult(v any, text func()) {
	if jsonOutput {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Println(renderError(err))
			return
		}
		fmt.Println(string(out))
		return
	}
	text()
}
