// Package all registers every verskeep command.
package all

import (
	_ "github.com/keshon/verskeep/internal/command/compare"
	_ "github.com/keshon/verskeep/internal/command/config"
	_ "github.com/keshon/verskeep/internal/command/delete"
	_ "github.com/keshon/verskeep/internal/command/diff"
	_ "github.com/keshon/verskeep/internal/command/list"
	_ "github.com/keshon/verskeep/internal/command/load"
	_ "github.com/keshon/verskeep/internal/command/save"
	_ "github.com/keshon/verskeep/internal/command/tree"
	_ "github.com/keshon/verskeep/internal/command/verify"
	_ "github.com/keshon/verskeep/internal/command/watch"
)
