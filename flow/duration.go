package flow

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)(ms|s)$`)

// ParseDuration accepts exactly "<n>s" or "<n>ms".
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: '%s'", ErrUnsupportedDuration, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s': %w", ErrUnsupportedDuration, s, err)
	}
	unit := time.Millisecond
	if m[2] == "s" {
		unit = time.Second
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: '%s' overflows", ErrUnsupportedDuration, s)
	}
	return time.Duration(n) * unit, nil
}
