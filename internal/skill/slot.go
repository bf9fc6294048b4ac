package skill

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmakana/dabus/internal/arrivals"
)

// SlotErrorKind separates missing from unparseable stop values. Both map to
// the same user-facing re-prompt; the kind exists for logs and metrics.
type SlotErrorKind string

const (
	SlotMissing SlotErrorKind = "missing"
	SlotInvalid SlotErrorKind = "invalid"
)

// SlotError reports a stop slot that could not be validated. Raw carries the
// offending input for diagnostics and must never reach speech output.
type SlotError struct {
	Kind SlotErrorKind
	Raw  string
}

func (e *SlotError) Error() string {
	if e.Kind == SlotMissing {
		return "stop slot missing"
	}
	return fmt.Sprintf("stop slot invalid: %q", e.Raw)
}

// ValidateStop is the single validator behind both the one-shot and the
// dialog entry path. It yields a positive StopID or a SlotError.
func ValidateStop(raw *string) (arrivals.StopID, error) {
	if raw == nil {
		return 0, &SlotError{Kind: SlotMissing}
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return 0, &SlotError{Kind: SlotMissing}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, &SlotError{Kind: SlotInvalid, Raw: *raw}
	}
	return arrivals.StopID(n), nil
}
