package rotation

import "time"

// Risk labels for Standard-format rotation exposure.
const (
	RiskSafe    = "SAFE"
	RiskWatch   = "WATCH"
	RiskDanger  = "DANGER"
	RiskRotated = "ROTATED"
	RiskUnknown = "UNKNOWN"
)

// markOrder is the regulation mark sequence, oldest first. Maintained by
// hand when a new mark ships.
var markOrder = []string{"D", "E", "F", "G", "H", "I"}

// CurrentMark is the newest mark in print.
const CurrentMark = "H"

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// calendar maps each known mark to its rotation date. A nil date means no
// rotation has been announced for the mark.
var calendar = map[string]*time.Time{
	"D": date(2022, time.July, 1),
	"E": date(2023, time.March, 31),
	"F": date(2024, time.March, 22),
	"G": date(2026, time.April, 10),
	"H": nil,
	"I": nil,
}

// Classify labels a card's rotation exposure as of today. A Banned
// legality wins over everything; a mark the calendar has never heard of
// is treated as already rotated.
func Classify(mark *string, legality *string, today time.Time) string {
	if legality != nil && *legality == "Banned" {
		return RiskRotated
	}
	if mark == nil || *mark == "" {
		return RiskUnknown
	}
	rotateAt, known := calendar[*mark]
	if !known {
		return RiskRotated
	}
	if rotateAt == nil {
		return RiskSafe
	}
	if !rotateAt.After(today) {
		return RiskRotated
	}
	days := int(rotateAt.Sub(today).Hours() / 24)
	switch {
	case days >= 180:
		return RiskSafe
	case days > 90:
		return RiskWatch
	default:
		return RiskDanger
	}
}

// AtRisk reports whether a label should block a signal.
func AtRisk(risk string) bool {
	return risk == RiskDanger || risk == RiskRotated
}

// Distance returns how many marks behind the current mark sits, never
// negative. Unknown marks report the full span of the sequence.
func Distance(mark string) int {
	current := indexOf(CurrentMark)
	pos := indexOf(mark)
	if pos < 0 {
		return len(markOrder)
	}
	if pos > current {
		return 0
	}
	return current - pos
}

func indexOf(mark string) int {
	for i, m := range markOrder {
		if m == mark {
			return i
		}
	}
	return -1
}
