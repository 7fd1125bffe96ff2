package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

// System returns the trimmed planner system instruction.
func System() string {
	return strings.TrimSpace(systemRaw)
}
