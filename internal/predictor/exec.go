package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"laptop-inventory-backend/internal/model"
)

// waitDelay bounds how long a killed command may hold its output pipes open.
const waitDelay = time.Second

// Exec runs a command per recommendation. The request goes to its stdin as
// JSON and a Response is read back from stdout.
type Exec struct {
	command string
	args    []string
}

// NewExec creates an Exec predictor for command.
func NewExec(command string, args ...string) *Exec {
	return &Exec{command: command, args: args}
}

// Recommend implements ledger.Predictor. The process is killed when ctx ends.
func (p *Exec) Recommend(ctx context.Context, employee model.CandidateFeatures, options []model.LaptopOption) (int64, error) {
	input, err := json.Marshal(Request{Employee: employee, Options: options})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%s failed: %w: %s", p.command, err, strings.TrimSpace(stderr.String()))
	}

	var out Response
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal output of %s: %w", p.command, err)
	}
	return out.LaptopID, nil
}
