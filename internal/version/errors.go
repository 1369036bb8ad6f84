package version

import (
	"errors"

	"github.com/keshon/verskeep/internal/config"
)

var (
	// ErrNoWorkspace means no workspace root contains the file.
	ErrNoWorkspace = config.ErrNoWorkspace

	// ErrVersionNotFound means the file has no snapshot with the given id.
	ErrVersionNotFound = errors.New("version not found")
)
