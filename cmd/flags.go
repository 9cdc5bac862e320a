package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
)

// parseEffort accepts "45m", "45min", "1.5h" or "2 hours".
func parseEffort(s string) (*entry.Effort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if i <= 0 {
		return nil, fmt.Errorf("invalid effort %q (use e.g. 45m or 1.5h)", s)
	}
	amount, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid effort %q: %w", s, err)
	}
	switch strings.TrimSpace(s[i:]) {
	case "m", "min", "mins", "minute", "minutes":
		return &entry.Effort{Amount: amount, Unit: entry.UnitMinutes}, nil
	case "h", "hr", "hrs", "hour", "hours":
		return &entry.Effort{Amount: amount, Unit: entry.UnitHours}, nil
	default:
		return nil, fmt.Errorf("invalid effort unit in %q (use m or h)", s)
	}
}

// parseDay validates an optional --day style flag.
func parseDay(flag, s string) (daykey.Key, error) {
	if s == "" {
		return "", nil
	}
	k, err := daykey.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid --%s %q (use YYYY-MM-DD)", flag, s)
	}
	return k, nil
}
