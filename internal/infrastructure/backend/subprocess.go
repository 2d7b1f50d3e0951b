package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// Subprocess evaluates by spawning the guardian CLI, isolating the pipeline
// from the calling process. The CLI writes human-readable progress lines and
// one final JSON object; the report is parsed from the first '{'.
type Subprocess struct {
	binary     string
	collection string
	opts       domain.QueryOptions
	timeout    time.Duration
}

func NewSubprocess(binary, collection string, opts domain.QueryOptions, timeout time.Duration) *Subprocess {
	if binary == "" {
		binary = "guardian"
	}
	if timeout <= 0 {
		timeout = defaultEvalTimeout
	}
	return &Subprocess{
		binary:     binary,
		collection: collection,
		opts:       opts,
		timeout:    timeout,
	}
}

func (b *Subprocess) Evaluate(ctx context.Context, text string) (domain.EvaluationReport, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	args := []string{
		"evaluate",
		"--collection", b.collection,
		"--text", text,
	}
	if b.opts.TopK > 0 {
		args = append(args, "--top_k", strconv.Itoa(b.opts.TopK))
	}
	if b.opts.MaxCtx > 0 {
		args = append(args, "--max_ctx", strconv.Itoa(b.opts.MaxCtx))
	}
	if b.opts.Rerank {
		args = append(args, "--rerank")
	}

	cmd := exec.CommandContext(callCtx, b.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.EvaluationReport{}, domain.WrapError(
			domain.ErrEvaluation,
			"run guardian subprocess",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())),
		)
	}

	report, err := ParseReport(stdout.String())
	if err != nil {
		return domain.EvaluationReport{}, err
	}
	return report, nil
}

// ParseReport extracts the final JSON report from CLI output. Everything
// before the first '{' is progress text and ignored.
func ParseReport(output string) (domain.EvaluationReport, error) {
	start := strings.Index(output, "{")
	if start < 0 {
		return domain.EvaluationReport{}, domain.WrapError(
			domain.ErrEvaluation,
			"parse guardian output",
			fmt.Errorf("no JSON object in output: %q", truncate(output, 200)),
		)
	}

	var report domain.EvaluationReport
	decoder := json.NewDecoder(strings.NewReader(output[start:]))
	if err := decoder.Decode(&report); err != nil {
		return domain.EvaluationReport{}, domain.WrapError(domain.ErrEvaluation, "parse guardian output", err)
	}
	if err := report.Validate(); err != nil {
		return domain.EvaluationReport{}, err
	}
	return report, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
