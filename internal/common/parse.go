package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInt64orHex converts a decimal or 0x-prefixed hex string into an int64.
func ParseInt64orHex(val string) (int64, error) {
	str := ToLowerWithTrim(val)
	base := 10

	if strings.HasPrefix(str, "0x") {
		str = str[2:]
		base = 16
	}

	return strconv.ParseInt(str, base, 64)
}

// ParseChainID parses a chain id given on the command line or in configuration.
// Negative values are rejected.
func ParseChainID(val string) (int64, error) {
	id, err := ParseInt64orHex(val)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", val, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid chain id %q: must not be negative", val)
	}
	return id, nil
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
