package dedup

import (
	"github.com/rs/zerolog"
)

// Log key constants for deduplication.
const (
	logKeySkippedKey = "skipped_key"
	logKeySource     = "source"
)

// AppendUnique returns a new slice holding base followed by the entries of add
// whose key is not present yet, keeping the first occurrence and the input
// order. Entries with an empty key are dropped. base is never modified. The
// second result is the number of entries of add that were dropped; each drop
// is logged at debug level when logger is set.
func AppendUnique[T any](base, add []T, key func(T) string, source string, logger *zerolog.Logger) ([]T, int) {
	result := make([]T, 0, len(base)+len(add))
	seen := make(map[string]struct{}, len(base)+len(add))

	for _, item := range base {
		k := key(item)
		if _, dup := seen[k]; dup || k == "" {
			continue
		}

		seen[k] = struct{}{}
		result = append(result, item)
	}

	dropped := 0

	for _, item := range add {
		k := key(item)
		if _, dup := seen[k]; dup || k == "" {
			dropped++

			if logger != nil {
				logger.Debug().
					Str(logKeySkippedKey, k).
					Str(logKeySource, source).
					Msg("Skipping duplicate")
			}

			continue
		}

		seen[k] = struct{}{}
		result = append(result, item)
	}

	return result, dropped
}
