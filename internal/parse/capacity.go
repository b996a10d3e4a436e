package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var capacityRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(TB|GB|MB|T|G|M)\b`)

// CapacityGB extracts the first size figure from a free-form RAM or storage
// string and returns it in gigabytes. "16GB", "16 GB DDR5", "512GB SSD" and "1TB NVMe"
// all parse; a bare number is taken as gigabytes.
func CapacityGB(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty capacity")
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	m := capacityRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unable to parse capacity: %q", raw)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse capacity %q: %w", raw, err)
	}

	switch strings.ToUpper(m[2]) {
	case "TB", "T":
		value *= 1024
	case "MB", "M":
		value /= 1024
	}
	return int(value), nil
}
