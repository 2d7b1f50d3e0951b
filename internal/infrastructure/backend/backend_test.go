package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guardianai/guardianai/internal/core/domain"
)

type evaluatorFake struct {
	report domain.EvaluationReport
	err    error
	opts   domain.QueryOptions
}

func (f *evaluatorFake) Evaluate(ctx context.Context, _ string, opts domain.QueryOptions) (domain.EvaluationReport, error) {
	f.opts = opts
	if err := ctx.Err(); err != nil {
		return domain.EvaluationReport{}, err
	}
	if f.err != nil {
		return domain.EvaluationReport{}, f.err
	}
	return f.report, nil
}

func TestInProcessForwardsOptionsAndReport(t *testing.T) {
	evaluator := &evaluatorFake{report: domain.EvaluationReport{
		SafetyEvaluation: domain.SafetyEvaluation{SafetyLevel: domain.SafetyLevelSafe, Reason: "ok"},
		ContextCount:     3,
	}}
	opts := domain.QueryOptions{TopK: 7, MaxCtx: 2, Rerank: true}
	b := NewInProcess(evaluator, opts, time.Second)

	report, err := b.Evaluate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.SafetyLevel != domain.SafetyLevelSafe {
		t.Fatalf("unexpected verdict %q", report.SafetyLevel)
	}
	if evaluator.opts != opts {
		t.Fatalf("expected options forwarded, got %+v", evaluator.opts)
	}
}

func TestInProcessSurfacesPipelineError(t *testing.T) {
	evaluator := &evaluatorFake{err: errors.New("retrieval down")}
	b := NewInProcess(evaluator, domain.QueryOptions{}, time.Second)

	if _, err := b.Evaluate(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseReportSkipsProgressText(t *testing.T) {
	output := "-> Evaluating text against collection 'policies'...\n" +
		`{"safety_level":"not safe","reason":"violates rule","degraded":false,"context_count":2}` + "\n"

	report, err := ParseReport(output)
	if err != nil {
		t.Fatalf("ParseReport() error = %v", err)
	}
	if report.SafetyLevel != domain.SafetyLevelNotSafe {
		t.Fatalf("unexpected verdict %q", report.SafetyLevel)
	}
	if report.ContextCount != 2 {
		t.Fatalf("unexpected context count %d", report.ContextCount)
	}
}

func TestParseReportIgnoresTrailingText(t *testing.T) {
	output := `{"safety_level":"safe","reason":"ok","degraded":true,"context_count":0}` + "\ndone\n"

	report, err := ParseReport(output)
	if err != nil {
		t.Fatalf("ParseReport() error = %v", err)
	}
	if !report.Degraded {
		t.Fatalf("expected degraded flag preserved")
	}
}

func TestParseReportRejectsMissingJSON(t *testing.T) {
	_, err := ParseReport("nothing useful here")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation, got %v", err)
	}
}

func TestParseReportRejectsInvalidVerdict(t *testing.T) {
	_, err := ParseReport(`{"safety_level":"maybe","reason":"unsure"}`)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation, got %v", err)
	}
}

func TestSubprocessFailureIsEvaluationError(t *testing.T) {
	b := NewSubprocess("/nonexistent/guardian-binary", "policies", domain.QueryOptions{}, time.Second)

	_, err := b.Evaluate(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation, got %v", err)
	}
	report := domain.FailSafeReport(domain.EvaluationReport{}, err)
	if report.SafetyLevel != domain.SafetyLevelNotSafe || report.Reason != domain.FailSafeReason {
		t.Fatalf("expected fail-safe verdict, got %+v", report)
	}
}
