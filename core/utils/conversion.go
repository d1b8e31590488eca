package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToUint parses a positive record id.
func ToUint(val string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", val)
	}
	return uint(n), nil
}

// ParseIDs parses record ids given as separate values, comma separated lists, or both.
func ParseIDs(values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := ToUint(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	return ids, nil
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(val string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(val), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", val)
	}
	return t, nil
}

// ToBool reads the usual spellings of a boolean flag value.
func ToBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
