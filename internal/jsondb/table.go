package jsondb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	dberrors "github.com/maruel/nuimages/internal/errors"
)

// Row is implemented by every record stored in a Table.
type Row interface {
	GetToken() string
}

// Table handles lazy loading and in-memory caching for a single table stored as
// a JSON array in `<name>.json`.
type Table[T Row] struct {
	fsys fs.FS
	name string

	mu      sync.Mutex
	loaded  bool
	rows    []T
	byToken map[string]int
}

// NewTable creates a new Table. No I/O happens until the first access.
func NewTable[T Row](fsys fs.FS, name string) *Table[T] {
	return &Table[T]{
		fsys: fsys,
		name: name,
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// File returns the file name of the table inside its fs.FS.
func (t *Table[T]) File() string {
	return t.name + ".json"
}

// Loaded reports whether the rows are resident.
func (t *Table[T]) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// Indexed reports whether the token index has been built.
func (t *Table[T]) Indexed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byToken != nil
}

// Load reads the table file if it is not resident yet.
func (t *Table[T]) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked()
}

func (t *Table[T]) loadLocked() error {
	if t.loaded {
		return nil
	}
	start := time.Now()
	f, err := t.fsys.Open(t.File())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dberrors.NotFound(dberrors.ErrTableFileNotFound, "table %s does not exist", t.name).WithDetail("file", t.File()).Wrap(err)
		}
		return fmt.Errorf("failed to open table file %s: %w", t.File(), err)
	}
	defer func() {
		_ = f.Close()
	}()

	// Stream the array so the raw file is never held twice in memory.
	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return malformed(t.name, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return malformed(t.name, fmt.Errorf("expected JSON array, got %v", tok))
	}
	rows := []T{}
	for dec.More() {
		var row T
		if err := dec.Decode(&row); err != nil {
			return malformed(t.name, fmt.Errorf("row %d: %w", len(rows), err))
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return malformed(t.name, err)
	}

	t.rows = rows
	t.loaded = true
	slog.Debug("Loaded table", "table", t.name, "rows", len(rows), "dur", time.Since(start).Round(time.Millisecond))
	return nil
}

func malformed(name string, err error) error {
	return dberrors.Decode(dberrors.ErrMalformedTable, "failed to parse table %s", name).Wrap(err)
}

// Rows returns all rows in file order, loading the table if needed.
//
// The returned slice is shared; callers must not modify it.
func (t *Table[T]) Rows() ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadLocked(); err != nil {
		return nil, err
	}
	return t.rows, nil
}

// Len returns the number of rows, loading the table if needed.
func (t *Table[T]) Len() (int, error) {
	rows, err := t.Rows()
	return len(rows), err
}

// IndexOf returns the position of the row with the given token.
//
// The token index is built on the first call by scanning the whole table once.
// A table in which two rows share a token is rejected.
func (t *Table[T]) IndexOf(token string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.buildIndexLocked(); err != nil {
		return 0, err
	}
	i, ok := t.byToken[token]
	if !ok {
		return 0, dberrors.NotFound(dberrors.ErrTokenNotFound, "token %q not found in table %s", token, t.name).WithDetail("table", t.name)
	}
	return i, nil
}

func (t *Table[T]) buildIndexLocked() error {
	if t.byToken != nil {
		return nil
	}
	if err := t.loadLocked(); err != nil {
		return err
	}
	start := time.Now()
	byToken := make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		token := row.GetToken()
		if prev, ok := byToken[token]; ok {
			return dberrors.Decode(dberrors.ErrDuplicateToken, "table %s: token %q at rows %d and %d", t.name, token, prev, i).WithDetail("table", t.name)
		}
		byToken[token] = i
	}
	t.byToken = byToken
	slog.Debug("Indexed table", "table", t.name, "tokens", len(byToken), "dur", time.Since(start).Round(time.Millisecond))
	return nil
}

// Get returns the row with the given token.
func (t *Table[T]) Get(token string) (T, error) {
	i, err := t.IndexOf(token)
	if err != nil {
		var zero T
		return zero, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows[i], nil
}

// Row returns the row with the given token as a Row.
//
// It lets heterogeneous tables be addressed by name through one interface.
func (t *Table[T]) Row(token string) (Row, error) {
	row, err := t.Get(token)
	if err != nil {
		return nil, err
	}
	return row, nil
}
