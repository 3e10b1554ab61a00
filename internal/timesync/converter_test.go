package timesync

import (
	"testing"
	"time"
)

func TestConverter_ToWallClock(t *testing.T) {
	base := time.Unix(1000000000, 0) // 2001-09-09 01:46:40 UTC
	converter := NewConverter(base)

	tests := []struct {
		name   string
		micros int64
		want   time.Time
	}{
		{
			name:   "zero",
			micros: 0,
			want:   base,
		},
		{
			name:   "one second",
			micros: 1_000_000,
			want:   base.Add(1 * time.Second),
		},
		{
			name:   "one hour",
			micros: 3_600_000_000,
			want:   base.Add(1 * time.Hour),
		},
		{
			name:   "mixed time",
			micros: 123_456_789,
			want:   base.Add(123*time.Second + 456*time.Millisecond + 789*time.Microsecond),
		},
		{
			name:   "negative",
			micros: -500,
			want:   base.Add(-500 * time.Microsecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := converter.ToWallClock(tt.micros)
			if !got.Equal(tt.want) {
				t.Errorf("ToWallClock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConverter_Base(t *testing.T) {
	base := time.Unix(1000000000, 0)
	converter := NewConverter(base)

	got := converter.Base()
	if !got.Equal(base) {
		t.Errorf("Base() = %v, want %v", got, base)
	}
}

func TestConverter_Enabled(t *testing.T) {
	var nilConverter *Converter
	if nilConverter.Enabled() {
		t.Error("nil converter should be disabled")
	}
	if NewConverter(time.Time{}).Enabled() {
		t.Error("zero base should be disabled")
	}
	if !NewConverter(time.Unix(1, 0)).Enabled() {
		t.Error("converter with base should be enabled")
	}
}

func TestParseBaseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantNil bool
		wantErr bool
	}{
		{name: "empty", input: "", wantNil: true},
		{name: "blank", input: "  ", wantNil: true},
		{name: "unix seconds", input: "1700000000", want: time.Unix(1700000000, 0)},
		{name: "rfc3339", input: "2024-01-02T03:04:05Z", want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2024-01-02T05:04:05+02:00", want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBaseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBaseTime(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBaseTime(%q) error = %v", tt.input, err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseBaseTime(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if !got.Base().Equal(tt.want) {
				t.Errorf("ParseBaseTime(%q).Base() = %v, want %v", tt.input, got.Base(), tt.want)
			}
		})
	}
}
