package version

import (
	"context"
	"fmt"

	"github.com/keshon/verskeep/internal/hash"
	"github.com/keshon/verskeep/internal/logger"
	"github.com/keshon/verskeep/internal/store/meta"
	"github.com/keshon/verskeep/internal/util"
)

// Status indicates the state of a snapshot blob on disk.
type Status int

const (
	OK Status = iota
	Missing
	Damaged
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Missing:
		return "missing"
	case Damaged:
		return "damaged"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in json and yaml output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Check struct {
	Version meta.Version `json:"version" yaml:"version"`
	Status  Status       `json:"status" yaml:"status"`
}

// Report is the outcome of Verify.
type Report struct {
	Checks  []Check  `json:"checks" yaml:"checks"`
	Orphans []string `json:"orphans" yaml:"orphans"`
}

// Counts returns the number of checks per status.
func (r *Report) Counts() (ok, missing, damaged int) {
	for _, c := range r.Checks {
		switch c.Status {
		case OK:
			ok++
		case Missing:
			missing++
		case Damaged:
			damaged++
		}
	}
	return ok, missing, damaged
}

// Healthy reports whether every snapshot is intact and no orphans exist.
func (r *Report) Healthy() bool {
	_, missing, damaged := r.Counts()
	return missing == 0 && damaged == 0 && len(r.Orphans) == 0
}

// Verify checks every snapshot blob of path against its recorded hash and
// size, and lists blobs that no descriptor references.
func (m *Manager) Verify(ctx context.Context, path string) (*Report, error) {
	return m.VerifyWithProgress(ctx, path, nil)
}

// VerifyWithProgress is Verify calling onCheck after each snapshot is
// checked. onCheck may be called from several goroutines.
func (m *Manager) VerifyWithProgress(ctx context.Context, path string, onCheck func(Check)) (*Report, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to verify %q: %w", path, err)
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return nil, err
	}

	versions := sortByCreated(rec.Versions.All())
	checks := make([]Check, len(versions))
	idx := make([]int, len(versions))
	for i := range idx {
		idx[i] = i
	}

	err = util.Parallel(idx, util.WorkerCount(), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		checks[i] = Check{Version: versions[i], Status: m.verifyOne(t, versions[i])}
		if onCheck != nil {
			onCheck(checks[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orphans, err := m.orphans(t, rec)
	if err != nil {
		return nil, err
	}

	report := &Report{Checks: checks, Orphans: orphans}
	ok, missing, damaged := report.Counts()
	m.log.InfoCtx(ctx, "verify complete",
		logger.KeyFile, t.path,
		"ok", ok, "missing", missing, "damaged", damaged, "orphans", len(orphans),
	)
	return report, nil
}

func (m *Manager) verifyOne(t target, v meta.Version) Status {
	data, err := m.Blobs.Load(t.root, t.path, v.ID)
	if err != nil {
		if m.fs.IsNotExist(err) {
			return Missing
		}
		return Damaged
	}
	if int64(len(data)) != v.SizeBytes || !hash.Verify(data, v.ContentHash) {
		return Damaged
	}
	return OK
}

func (m *Manager) orphans(t target, rec *meta.Record) ([]string, error) {
	ids, err := m.Blobs.List(t.root, t.path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, id := range ids {
		if _, ok := rec.Versions.Get(id); !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// CleanOrphans removes blobs of path that no descriptor references and
// returns their ids.
func (m *Manager) CleanOrphans(ctx context.Context, path string) ([]string, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to clean %q: %w", path, err)
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return nil, err
	}
	orphans, err := m.orphans(t, rec)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(orphans))
	for _, id := range orphans {
		if err := m.Blobs.Remove(t.root, t.path, id); err != nil {
			return removed, err
		}
		removed = append(removed, id)
		m.log.InfoCtx(ctx, "orphan removed", logger.KeyFile, t.path, logger.KeyVersion, id)
	}
	return removed, nil
}
