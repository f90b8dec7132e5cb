package actions

import (
	"os"
	"strings"
)

// State names written by the restore step.
const (
	StatePrimaryKey = "CACHE_KEY"
	StateMatchedKey = "CACHE_RESULT"
)

// GetState returns the value saved by an earlier step of the same action
// under name.
func GetState(name string) string {
	return os.Getenv("STATE_" + name)
}

// IsExactKeyMatch reports whether the key the restore step matched is the
// requested key itself rather than a restore-keys prefix. Comparison ignores
// case; an empty matched key never matches.
func IsExactKeyMatch(key, matchedKey string) bool {
	return matchedKey != "" && strings.EqualFold(key, matchedKey)
}

// RestoredKeyMatch reports whether the restore step found an archive under the
// exact key. The primary key saved by the restore step wins over key.
func RestoredKeyMatch(key string) bool {
	if primary := GetState(StatePrimaryKey); primary != "" {
		key = primary
	}
	return IsExactKeyMatch(key, GetState(StateMatchedKey))
}
