package postgres

import "github.com/google/uuid"

// isUUID reports whether id can match a uuid key. Anything else reads as a
// missing row rather than failing the cast with 22P02.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
