package contracts

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodRange_Validate(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	valid := &PeriodRange{From: from, To: to}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid range = %v, want nil", err)
	}

	// A degenerate single-instant range is allowed
	instant := &PeriodRange{From: from, To: from}
	if err := instant.Validate(); err != nil {
		t.Errorf("Validate() on single-instant range = %v, want nil", err)
	}

	inverted := &PeriodRange{From: to, To: from}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Validate() on inverted range = %v, want ErrInvalidPeriod", err)
	}
}

func TestDefaultPeriodRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	window := DefaultPeriodRange(now)

	if !window.To.Equal(now) {
		t.Errorf("To = %v, want %v", window.To, now)
	}

	wantFrom := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	if !window.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", window.From, wantFrom)
	}

	if err := window.Validate(); err != nil {
		t.Errorf("default window should validate, got %v", err)
	}
}

func TestDealRecord_IsWon(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{DealStatusWon, true},
		{"Lost", false},
		{"Negotiation", false},
		{"", false},
		{"won", false}, // statuses are case-sensitive
	}

	for _, tt := range tests {
		d := &DealRecord{Status: tt.status}
		if got := d.IsWon(); got != tt.want {
			t.Errorf("IsWon() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12"},
		{time.Date(1999, 7, 1, 0, 0, 0, 0, time.UTC), "1999-07"},
	}

	for _, tt := range tests {
		if got := MonthKey(tt.in); got != tt.want {
			t.Errorf("MonthKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
