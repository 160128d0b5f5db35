package normalization

import (
  "strings"
)

func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

// ParseTitle trims whitespace but keeps the user's casing, titles are
// display strings rather than lookup keys.
func ParseTitle(input string) string {
  return strings.TrimSpace(input)
}
