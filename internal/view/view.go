// Package view models the per-file version tree shown to the operator.
package view

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/keshon/verskeep/internal/store/meta"
)

const timeLayout = "2006-01-02 15:04:05"

// Kind tags an Item.
type Kind int

const (
	KindFile Kind = iota
	KindSnapshot
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSnapshot:
		return "snapshot"
	default:
		return "placeholder"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// NoVersions labels the placeholder child of a file without snapshots.
const NoVersions = "No versions saved"

// Item is one node of the tree. Version is set only for KindSnapshot.
type Item struct {
	Kind        Kind          `json:"kind" yaml:"kind"`
	Label       string        `json:"label" yaml:"label"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tooltip     string        `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Path        string        `json:"path,omitempty" yaml:"path,omitempty"`
	Current     bool          `json:"current,omitempty" yaml:"current,omitempty"`
	Version     *meta.Version `json:"version,omitempty" yaml:"version,omitempty"`
	Children    []Item        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Lister supplies the snapshots of a file.
type Lister interface {
	GetVersions(ctx context.Context, path string) ([]meta.Version, error)
	Current(ctx context.Context, path string) (meta.Version, bool, error)
}

// Build returns the file node of path with one child per snapshot, oldest
// first, or a placeholder child when there are none.
func Build(ctx context.Context, l Lister, path string) (Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Item{}, err
	}
	root := FileItem(abs)

	versions, err := l.GetVersions(ctx, abs)
	if err != nil {
		return Item{}, err
	}
	if len(versions) == 0 {
		root.Children = []Item{{Kind: KindPlaceholder, Label: NoVersions}}
		return root, nil
	}

	cur, hasCur, err := l.Current(ctx, abs)
	if err != nil {
		return Item{}, err
	}
	for _, v := range versions {
		item := SnapshotItem(v)
		item.Current = hasCur && cur.ID == v.ID
		root.Children = append(root.Children, item)
	}
	return root, nil
}

func FileItem(path string) Item {
	return Item{
		Kind:    KindFile,
		Label:   filepath.Base(path),
		Tooltip: path,
		Path:    path,
	}
}

func SnapshotItem(v meta.Version) Item {
	when := v.CreatedAt.Local().Format(timeLayout)

	desc := v.Description
	if desc == "" {
		desc = when
	}
	tip := v.Description
	if tip == "" {
		tip = "No description"
	}
	return Item{
		Kind:        KindSnapshot,
		Label:       v.ID,
		Description: desc,
		Tooltip:     fmt.Sprintf("%s (%s)", tip, when),
		Path:        v.OriginalPath,
		Version:     &v,
	}
}

// Render draws root and its children as an indented tree. Color adds ANSI
// highlighting for the current snapshot and placeholders.
func Render(w io.Writer, root Item, color bool) error {
	var b strings.Builder
	b.WriteString(root.Label)
	if root.Path != "" && root.Path != root.Label {
		b.WriteString(paint(color, "\033[90m", "  "+root.Path))
	}
	b.WriteByte('\n')

	for i, c := range root.Children {
		branch := "├── "
		if i == len(root.Children)-1 {
			branch = "└── "
		}
		b.WriteString(branch)

		switch c.Kind {
		case KindPlaceholder:
			b.WriteString(paint(color, "\033[90m", c.Label))
		case KindSnapshot:
			label := c.Label
			if c.Current {
				label = paint(color, "\033[32m", label+" *")
			}
			b.WriteString(label)
			if c.Description != "" {
				b.WriteString("  " + c.Description)
			}
		default:
			b.WriteString(c.Label)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + "\033[0m"
}
