package engine_test

import (
	"errors"
	"testing"

	"github.com/convoca/convocation-engine/engine"
)

// =============================================================================
// ATTENDANCE STATUS NORMALIZATION TESTS
// =============================================================================

func TestNormalizeAttendanceStatus_CanonicalAndLegacyLiterals(t *testing.T) {
	cases := []struct {
		raw  string
		want engine.AttendanceStatus
	}{
		{"CONVOKED", engine.AttendanceConvoked},
		{"CONVOCADO", engine.AttendanceConvoked},
		{"CONFIRMED", engine.AttendanceConfirmed},
		{"CONFIRMADO", engine.AttendanceConfirmed},
		{"ATTENDED", engine.AttendanceAttended},
		{"ASISTIO", engine.AttendanceAttended},
		{"ASISTIÓ", engine.AttendanceAttended},
		{"ABSENT", engine.AttendanceAbsent},
		{"NO_ASISTIO", engine.AttendanceAbsent},
		{"FALTO", engine.AttendanceAbsent},
		{"FALTÓ", engine.AttendanceAbsent},
		{"JUSTIFIED", engine.AttendanceJustified},
		{"JUSTIFICADO", engine.AttendanceJustified},
		{"  absent  ", engine.AttendanceAbsent}, // case and whitespace folded
	}
	for _, tc := range cases {
		got, err := engine.NormalizeAttendanceStatus(tc.raw)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeAttendanceStatus_UnknownLiteralRejected(t *testing.T) {
	_, err := engine.NormalizeAttendanceStatus("MAYBE")
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAttendanceStatus_IsNoShow(t *testing.T) {
	if !engine.AttendanceAbsent.IsNoShow() {
		t.Error("ABSENT is the no-show status")
	}
	for _, s := range []engine.AttendanceStatus{
		engine.AttendanceConvoked,
		engine.AttendanceConfirmed,
		engine.AttendanceAttended,
		engine.AttendanceJustified,
	} {
		if s.IsNoShow() {
			t.Errorf("%s must not count as a no-show", s)
		}
	}
}

// =============================================================================
// AREA NAME NORMALIZATION TESTS
// =============================================================================

func TestNormalizeAreaName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"logistics", "LOGISTICS"},
		{"  Port   Operations ", "PORT OPERATIONS"},
		{"ALREADY UPPER", "ALREADY UPPER"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := engine.NormalizeAreaName(tc.in); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

// =============================================================================
// AUTO-PENALTY WINDOW TESTS
// =============================================================================

func TestAutoPenaltyWindow_ThreeDaysFromWorkDate(t *testing.T) {
	workDate := day(2024, 7, 2)
	w := engine.AutoPenaltyWindow(workDate)
	if !w.Start.Equal(workDate) {
		t.Errorf("window starts on the work date, got %s", w.Start)
	}
	if !w.End.Equal(day(2024, 7, 5)) {
		t.Errorf("window ends three days later, got %s", w.End)
	}
}
