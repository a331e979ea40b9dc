package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDisplaySeconds is the largest value a two-digit mm:ss display can show.
const MaxDisplaySeconds = 99*60 + 59

var ErrBadDuration = errors.New("malformed duration")

// ParseDuration converts "mm:ss" into seconds. A bare number is read as
// minutes ("10" is ten minutes), matching what the settings form stores.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadDuration)
	}

	minPart, secPart, hasSec := strings.Cut(s, ":")
	minutes, err := strconv.Atoi(strings.TrimSpace(minPart))
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: minutes in %q", ErrBadDuration, s)
	}

	seconds := 0
	if hasSec && strings.TrimSpace(secPart) != "" {
		seconds, err = strconv.Atoi(strings.TrimSpace(secPart))
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("%w: seconds in %q", ErrBadDuration, s)
		}
	}

	return minutes*60 + seconds, nil
}

// FormatDuration renders seconds as zero-padded mm:ss.
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
