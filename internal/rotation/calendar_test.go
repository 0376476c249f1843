package rotation

import (
	"testing"
	"time"
)

var reference = time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestClassifyBannedWins(t *testing.T) {
	got := Classify(strPtr("H"), strPtr("Banned"), reference)
	if got != RiskRotated {
		t.Fatalf("banned card: expected ROTATED, got %s", got)
	}
}

func TestClassifyMissingMark(t *testing.T) {
	if got := Classify(nil, nil, reference); got != RiskUnknown {
		t.Fatalf("nil mark: expected UNKNOWN, got %s", got)
	}
	if got := Classify(strPtr(""), nil, reference); got != RiskUnknown {
		t.Fatalf("empty mark: expected UNKNOWN, got %s", got)
	}
}

func TestClassifyUnknownMarkRotated(t *testing.T) {
	if got := Classify(strPtr("Z"), nil, reference); got != RiskRotated {
		t.Fatalf("unlisted mark: expected ROTATED, got %s", got)
	}
}

func TestClassifyNoRotationDate(t *testing.T) {
	if got := Classify(strPtr("H"), nil, reference); got != RiskSafe {
		t.Fatalf("mark H: expected SAFE, got %s", got)
	}
	if got := Classify(strPtr("I"), nil, reference); got != RiskSafe {
		t.Fatalf("mark I: expected SAFE, got %s", got)
	}
}

func TestClassifyPastDateRotated(t *testing.T) {
	if got := Classify(strPtr("F"), nil, reference); got != RiskRotated {
		t.Fatalf("mark F: expected ROTATED, got %s", got)
	}
}

func TestClassifyGIsDangerNearRotation(t *testing.T) {
	// G rotates 2026-04-10, 47 days from the reference date.
	if got := Classify(strPtr("G"), nil, reference); got != RiskDanger {
		t.Fatalf("mark G: expected DANGER, got %s", got)
	}
}

func TestClassifyDayBoundaries(t *testing.T) {
	rotateAt := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		days int
		want string
	}{
		{400, RiskSafe},
		{180, RiskSafe},
		{179, RiskWatch},
		{91, RiskWatch},
		{90, RiskDanger},
		{1, RiskDanger},
		{-1, RiskRotated},
	}
	for _, tc := range cases {
		today := rotateAt.AddDate(0, 0, -tc.days)
		got := Classify(strPtr("G"), nil, today)
		if got != tc.want {
			t.Fatalf("%d days out: expected %s, got %s", tc.days, tc.want, got)
		}
	}
}

func TestAtRisk(t *testing.T) {
	for risk, want := range map[string]bool{
		RiskSafe:    false,
		RiskWatch:   false,
		RiskUnknown: false,
		RiskDanger:  true,
		RiskRotated: true,
	} {
		if AtRisk(risk) != want {
			t.Fatalf("AtRisk(%s): expected %v", risk, want)
		}
	}
}

func TestDistance(t *testing.T) {
	cases := map[string]int{
		"H": 0,
		"G": 1,
		"D": 4,
		"I": 0,
		"Z": 6,
	}
	for mark, want := range cases {
		if got := Distance(mark); got != want {
			t.Fatalf("Distance(%s): expected %d, got %d", mark, want, got)
		}
	}
}
