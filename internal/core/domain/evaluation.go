package domain

import (
	"errors"
	"fmt"
)

type SafetyLevel string

const (
	SafetyLevelSafe    SafetyLevel = "safe"
	SafetyLevelNotSafe SafetyLevel = "not safe"
)

// FailSafeReason is the fixed reason attached to the conservative verdict
// whenever the evaluation pipeline fails for any cause.
const FailSafeReason = "GuardianAI system error."

// SafetyEvaluation is the structured verdict of the guardian. It is immutable
// once produced; every completed evaluation call yields exactly one.
type SafetyEvaluation struct {
	SafetyLevel SafetyLevel `json:"safety_level"`
	Reason      string      `json:"reason"`
}

func (e SafetyEvaluation) Validate() error {
	switch e.SafetyLevel {
	case SafetyLevelSafe, SafetyLevelNotSafe:
	default:
		return WrapError(ErrEvaluation, "validate verdict", fmt.Errorf("unknown safety_level %q", e.SafetyLevel))
	}
	if e.Reason == "" {
		return WrapError(ErrEvaluation, "validate verdict", errors.New("empty reason"))
	}
	return nil
}

// FailSafeEvaluation is the fail-closed verdict: when correctness cannot be
// confirmed the system prefers blocking safe content over passing unsafe
// content.
func FailSafeEvaluation() SafetyEvaluation {
	return SafetyEvaluation{
		SafetyLevel: SafetyLevelNotSafe,
		Reason:      FailSafeReason,
	}
}

// EvaluationReport is the evaluator's full result. Degraded marks a verdict
// produced without any retrieved policy context; it is a warning for the
// caller, not an error.
type EvaluationReport struct {
	SafetyEvaluation
	Degraded     bool `json:"degraded"`
	ContextCount int  `json:"context_count"`
}

// FailSafeReport wraps a failed evaluation into the conservative verdict.
// Callers of the evaluator apply it; the evaluator itself never fabricates a
// verdict, keeping the fail-closed policy visible at each call site.
func FailSafeReport(report EvaluationReport, err error) EvaluationReport {
	if err == nil {
		return report
	}
	return EvaluationReport{SafetyEvaluation: FailSafeEvaluation()}
}
