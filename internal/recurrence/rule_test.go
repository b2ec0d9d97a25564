package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPreviewEndDate(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		start time.Time
		want  time.Time
	}{
		{
			name:  "every 4 weeks x6 spans 20 weeks",
			rule:  Rule{Frequency: Every4Weeks, Occurrences: 6},
			start: date(2024, time.January, 1),
			want:  date(2024, time.May, 20),
		},
		{
			name:  "weekly x2",
			rule:  Rule{Frequency: Weekly, Occurrences: 2},
			start: date(2024, time.January, 1),
			want:  date(2024, time.January, 8),
		},
		{
			name:  "every 8 weeks x3",
			rule:  Rule{Frequency: Every8Weeks, Occurrences: 3},
			start: date(2024, time.January, 1),
			want:  date(2024, time.April, 22),
		},
		{
			name:  "monthly x6 uses calendar months",
			rule:  Rule{Frequency: Monthly, Occurrences: 6},
			start: date(2024, time.January, 15),
			want:  date(2024, time.June, 15),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.PreviewEndDate(tt.start)
			if !got.Equal(tt.want) {
				t.Errorf("PreviewEndDate = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (Rule{Frequency: Every2Weeks, Occurrences: 2}).Validate(); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}
	if err := (Rule{Frequency: Monthly, Occurrences: 26}).Validate(); err != nil {
		t.Errorf("upper bound rejected: %v", err)
	}
	if err := (Rule{Frequency: Weekly, Occurrences: 1}).Validate(); err == nil {
		t.Error("occurrences below minimum accepted")
	}
	if err := (Rule{Frequency: Weekly, Occurrences: 27}).Validate(); err == nil {
		t.Error("occurrences above maximum accepted")
	}
	if err := (Rule{Frequency: "fortnightly", Occurrences: 4}).Validate(); err == nil {
		t.Error("unknown frequency accepted")
	}
}
