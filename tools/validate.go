package tools

import (
	"fmt"
	"time"
)

const (
	maxBodySize    = 10 * 1024 * 1024 // 10 MB
	maxSubjectSize = 998              // RFC 5322 line length limit

	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// validateEmailID checks that an email ID is present and printable.
func validateEmailID(id string) error {
	if id == "" {
		return fmt.Errorf("email_id parameter is required")
	}
	if len(id) > 255 {
		return fmt.Errorf("email_id exceeds maximum length of 255 characters")
	}

	// Reject null bytes and control characters
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("email_id contains invalid characters")
		}
	}

	return nil
}

// validateBodySize checks that body content doesn't exceed limits.
func validateBodySize(name, body string) error {
	if len(body) > maxBodySize {
		return fmt.Errorf("%s exceeds maximum size of %d bytes", name, maxBodySize)
	}
	return nil
}

// validateSubjectSize checks that subject doesn't exceed limits.
func validateSubjectSize(subject string) error {
	if len(subject) > maxSubjectSize {
		return fmt.Errorf("subject exceeds maximum length of %d characters", maxSubjectSize)
	}
	return nil
}

// clampLimit bounds a search limit to 1..maxSearchLimit.
func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxSearchLimit {
		return maxSearchLimit
	}
	return n
}

// parseDate accepts RFC 3339 or a bare YYYY-MM-DD date. A bare date is
// expanded to the start of the day, or the end when endOfDay is set.
func parseDate(key, s string, endOfDay bool) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q: expected YYYY-MM-DD or RFC 3339", key, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
