package extract

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"offertanalys/internal/shared/telemetry"
	"offertanalys/internal/shared/util"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	fields := map[string]any{
		"cmd":         name,
		"args":        strings.Join(args, " "),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		fields["stderr"] = util.Truncate(errb.String(), 8<<10)
		telemetry.Warn("exec.failed", fields)
	} else {
		fields["stdout_bytes"] = out.Len()
		telemetry.Info("exec.ok", fields)
	}

	return out.Bytes(), errb.Bytes(), err
}
