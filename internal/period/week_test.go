package period

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "monday maps to itself",
			input: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "midweek maps back to monday",
			input: time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday maps back to previous monday",
			input: time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "next monday starts a new week",
			input: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "week spanning a month boundary",
			input: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "week spanning a year boundary",
			input: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			// 2025-03-10 00:30 CET is still Sunday 23:30 in UTC.
			name:  "non-UTC input is normalized to UTC",
			input: time.Date(2025, 3, 10, 0, 30, 0, 0, time.FixedZone("CET", 3600)),
			want:  time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StartOfWeek(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("StartOfWeek(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("StartOfWeek(%v) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestEndOfWeek(t *testing.T) {
	input := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

	got := EndOfWeek(input)
	want := time.Date(2025, 3, 16, 23, 59, 59, 999999999, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndOfWeek(%v) = %v, want %v", input, got, want)
	}
}

func TestWeekBoundsAgreeAcrossTheWeek(t *testing.T) {
	// Every instant of one week must yield the same bounds.
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		instant := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		if got := StartOfWeek(instant); !got.Equal(monday) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", instant, got, monday)
		}
		if got := EndOfWeek(instant); !got.Equal(EndOfWeek(monday)) {
			t.Errorf("EndOfWeek(%v) = %v, want %v", instant, got, EndOfWeek(monday))
		}
	}
}
