package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want Status
	}{
		{"confirmed", StatusConfirmed},
		{"Confirmed", StatusConfirmed},
		{" checked_in ", StatusConfirmed},
		{"checked_out", StatusConfirmed},
		{"canceled", StatusCancelled},
		{"cancelled", StatusCancelled},
		{"declined", StatusCancelled},
		{"expired", StatusCancelled},
		{"closed", StatusCancelled},
		{"inquiry", StatusTentative},
		{"reserved", StatusTentative},
		{"", StatusTentative},
		{"something-new", StatusTentative},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

func TestSplitGuestName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		full      string
		wantFirst string
		wantLast  string
	}{
		{"simple", "Jane Doe", "Jane", "Doe"},
		{"multi-part last name", "Mary Jo van der Berg", "Mary", "Jo van der Berg"},
		{"single token", "Cher", "Cher", ""},
		{"extra whitespace", "  Jane   Doe  ", "Jane", "Doe"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitGuestName(tt.full)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestPin(t *testing.T) {
	t.Parallel()
	r := Reservation{CheckInLocal: "2025-06-01", CheckOutLocal: "2025-06-15"}
	assert.Equal(t, "0115", r.Pin())

	r = Reservation{CheckInLocal: "2025-12-28", CheckOutLocal: "2026-01-02"}
	assert.Equal(t, "2802", r.Pin())

	r = Reservation{CheckInLocal: "", CheckOutLocal: "2025-06-15"}
	assert.Equal(t, "", r.Pin())

	r = Reservation{CheckInLocal: "garbage", CheckOutLocal: "2025-06-15"}
	assert.Equal(t, "", r.Pin())
}

func TestStatusString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "confirmed", StatusConfirmed.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "tentative", StatusTentative.String())
}
