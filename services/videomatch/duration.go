package videomatch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseISODuration parses the platform's ISO-8601 video durations, e.g.
// "PT2H16M5S", "PT45M" or "PT58S". Date components never occur in video
// durations and are rejected.
func parseISODuration(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	rest := s[2:]
	if rest == "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total time.Duration
	num := ""
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'H' || r == 'M' || r == 'S':
			if num == "" {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			switch r {
			case 'H':
				total += time.Duration(n) * time.Hour
			case 'M':
				total += time.Duration(n) * time.Minute
			case 'S':
				total += time.Duration(n) * time.Second
			}
			num = ""
		default:
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}
	if num != "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
