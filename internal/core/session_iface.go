package core

import (
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/google/uuid"
)

// NewConnID returns a UUIDv7 string. Version 7 ids grow with creation time,
// so comparing two ids as strings orders connections by when they opened.
func NewConnID() domain.ConnID {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the random source does; fall back to v4.
		return domain.ConnID(uuid.NewString())
	}
	return domain.ConnID(id.String())
}
