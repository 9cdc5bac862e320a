package daykey

import (
	"errors"
	"testing"
	"time"
)

func TestConventionKey(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		conv Convention
		at   time.Time
		want Key
	}{
		{"utc midday", UTC, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), "2024-01-03"},
		{"utc just before midnight", UTC, time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC), "2024-01-03"},
		{"offset input normalized to utc", UTC, time.Date(2024, 1, 3, 22, 0, 0, 0, ny), "2024-01-04"},
		{"new york evening", NewConvention(ny), time.Date(2024, 1, 4, 2, 0, 0, 0, time.UTC), "2024-01-03"},
		{"dst spring forward", NewConvention(ny), time.Date(2024, 3, 10, 3, 30, 0, 0, ny), "2024-03-10"},
		{"dst fall back repeated hour", NewConvention(ny), time.Date(2024, 11, 3, 1, 30, 0, 0, ny), "2024-11-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conv.Key(tt.at); got != tt.want {
				t.Errorf("Key(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestKeyIsStable(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	first := UTC.Key(at)
	for i := 0; i < 5; i++ {
		if got := UTC.Key(at); got != first {
			t.Fatalf("Key not stable: %q then %q", first, got)
		}
	}
}

func TestKeyIsMonotonic(t *testing.T) {
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	prev := UTC.Key(start)
	for h := 1; h < 24*5; h++ {
		k := UTC.Key(start.Add(time.Duration(h) * time.Hour))
		if k.Before(prev) {
			t.Fatalf("key went backwards at +%dh: %q < %q", h, k, prev)
		}
		prev = k
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-01-01", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2024-1-05", true},
		{"2024-01-05T00:00:00Z", true},
		{"", true},
		{"yesterday", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedKey) {
					t.Errorf("Parse(%q) err = %v, want ErrMalformedKey", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		from Key
		n    int
		want Key
	}{
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2024-03-09", 2, "2024-03-11"},
		{"2024-11-02", 2, "2024-11-04"},
	}
	for _, tt := range tests {
		if got := tt.from.AddDays(tt.n); got != tt.want {
			t.Errorf("%q.AddDays(%d) = %q, want %q", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	n, err := DaysBetween("2024-01-01", "2024-01-05")
	if err != nil {
		t.Fatalf("DaysBetween: %v", err)
	}
	if n != 4 {
		t.Errorf("DaysBetween = %d, want 4", n)
	}

	if _, err := DaysBetween("2024-01-01", "nope"); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestStartOf(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	c := NewConvention(ny)
	got, err := c.StartOf("2024-03-10")
	if err != nil {
		t.Fatalf("StartOf: %v", err)
	}
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Errorf("StartOf = %v, want %v", got, want)
	}
}

func TestLoadConvention(t *testing.T) {
	c, err := LoadConvention("")
	if err != nil {
		t.Fatalf("LoadConvention(\"\"): %v", err)
	}
	if c.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", c.Location())
	}
	if _, err := LoadConvention("Not/AZone"); err == nil {
		t.Error("expected error for unknown zone")
	}
}
