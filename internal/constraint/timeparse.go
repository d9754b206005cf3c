package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var meridiemPattern = regexp.MustCompile(`\s*(a\.?m\.?|p\.?m\.?)\s*$`)

// ParseTime converts "2 PM", "9:30am" or "14:30" into canonical 24-hour "HH:MM".
// "12 pm" is noon and "12 am" is midnight.
func ParseTime(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("empty time expression")
	}

	meridiem := ""
	if match := meridiemPattern.FindStringSubmatch(value); match != nil {
		meridiem = strings.ReplaceAll(match[1], ".", "")
		value = strings.TrimSpace(value[:len(value)-len(match[0])])
	}

	hourPart, minutePart, hasMinutes := strings.Cut(value, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", fmt.Errorf("invalid hour in %q", raw)
	}
	minute := 0
	if hasMinutes {
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return "", fmt.Errorf("invalid minute in %q", raw)
		}
	}

	switch meridiem {
	case "pm":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("hour out of range in %q", raw)
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("hour out of range in %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("time out of range in %q", raw)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
