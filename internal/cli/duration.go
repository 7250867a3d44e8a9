package cli

import (
	"errors"
	"math"
	"strconv"
	"time"
)

var errBadDuration = errors.New("duration must be whole seconds or a duration such as 1m30s")

// parseSeconds accepts "90" or "1m30s" and rounds to whole seconds.
func parseSeconds(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errBadDuration
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errBadDuration
	}
	return int(math.Round(d.Seconds())), nil
}
