package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID, used as primary key for
// database rows so inserts stay roughly append-ordered.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateTraceID returns a random UUID for request tracing.
func GenerateTraceID() string {
	return uuid.New().String()
}
