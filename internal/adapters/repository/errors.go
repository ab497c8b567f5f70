package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Sentinel kinds for repository errors. They alias the domain kinds so
// callers can match either.
var (
	ErrNotFound    = model.ErrNotFound
	ErrUnavailable = model.ErrRepositoryUnavailable
	ErrUnknownKind = errors.New("unknown repository kind")
)

// translate maps driver errors onto the repository kinds.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
