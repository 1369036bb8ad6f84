package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/keshon/verskeep/internal/store/meta"
)

// FirstID is assigned when a file has no usable previous id.
const FirstID = "v1.0"

var idPattern = regexp.MustCompile(`^v(\d+)\.(\d+)$`)

// NextID derives the id for a new snapshot from the most recently inserted
// one: v<major>.<minor> becomes v<major>.<minor+1>. Anything else, or no
// previous id, starts at FirstID. The major part never advances.
func NextID(vs *meta.Versions) string {
	last, ok := vs.Last()
	if !ok {
		return FirstID
	}
	return nextAfter(last)
}

func nextAfter(last string) string {
	m := idPattern.FindStringSubmatch(last)
	if m == nil {
		return FirstID
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return FirstID
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return FirstID
	}
	return fmt.Sprintf("v%d.%d", major, minor+1)
}
