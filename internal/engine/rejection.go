package engine

import "fmt"

// Stage names, in contractual execution order.
const (
	StageVariant   = "variant"
	StageSeller    = "seller"
	StageCondition = "condition"
	StageProfit    = "profit"
	StageVelocity  = "velocity"
	StageTrend     = "trend"
	StageMaturity  = "maturity"
	StageRotation  = "rotation"
	StageHeadache  = "headache"
	StageBundle    = "bundle"
)

// Rejection records which stage dropped a candidate and why. It is a
// normal outcome, not a fault.
type Rejection struct {
	Stage  string
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected at %s: %s", r.Stage, r.Reason)
}

func reject(stage, format string, args ...any) *Rejection {
	return &Rejection{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}
