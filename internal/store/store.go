package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/amirbrooks/atlas/internal/config"
	"github.com/amirbrooks/atlas/internal/logging"
	"github.com/amirbrooks/atlas/internal/tasks"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	timeNow     = time.Now
)

// Workspace is the portfolio on disk. Every operation reads whole files,
// transforms them with the tasks package and writes them back, one file at
// a time.
type Workspace struct {
	cfg *config.Config
	log zerolog.Logger
}

// Open opens the portfolio described by cfg. It does not create files until
// Init is called.
func Open(cfg *config.Config) (*Workspace, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalid)
	}
	return &Workspace{cfg: cfg, log: logging.Component("store")}, nil
}

func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// Resolve maps a file name given by the user onto the portfolio directory.
func (w *Workspace) Resolve(name string) string {
	return w.cfg.Path(name)
}

// Init creates the base directory and any missing portfolio file with a Top
// Tasks List and an incoming heading.
func (w *Workspace) Init() ([]string, error) {
	if err := os.MkdirAll(w.cfg.Files.BaseDir, 0o755); err != nil {
		return nil, err
	}
	sep := w.cfg.Symbols.Separator
	h := w.cfg.Symbols.Heading
	var created []string
	for _, path := range w.cfg.PortfolioPaths() {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		doc := tasks.Document{Path: path, Lines: []string{
			h + sep + w.cfg.Headings.TTL,
			"",
			h + sep + w.cfg.Headings.Incoming,
		}}
		if err := w.WriteDocument(doc); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}

// ReadDocument reads path as "\n"-separated lines. A final terminator does
// not produce an empty last line.
func (w *Workspace) ReadDocument(path string) (tasks.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tasks.Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return tasks.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc := tasks.Document{Path: path}
	if text := strings.TrimSuffix(string(b), "\n"); len(b) > 0 {
		doc.Lines = tasks.SplitLines(text)
	}
	log := logging.WithFile("store", path)
	log.Debug().Int("lines", len(doc.Lines)).Msg("read")
	return doc, nil
}

// readOptional reads path, treating a missing file as empty.
func (w *Workspace) readOptional(path string) (tasks.Document, error) {
	doc, err := w.ReadDocument(path)
	if errors.Is(err, ErrNotFound) {
		return tasks.Document{Path: path}, nil
	}
	return doc, err
}

// WriteDocument replaces the file at doc.Path with its lines.
func (w *Workspace) WriteDocument(doc tasks.Document) error {
	data := tasks.JoinLines(doc.Lines)
	if len(doc.Lines) > 0 {
		data += "\n"
	}
	if err := atomicWriteFile(doc.Path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", doc.Path, err)
	}
	log := logging.WithFile("store", doc.Path)
	log.Debug().Int("lines", len(doc.Lines)).Msg("written")
	return nil
}

func (w *Workspace) replace(path string, lines []string) error {
	return w.WriteDocument(tasks.Document{Path: path, Lines: lines})
}

// Portfolio reads every portfolio file in configured order.
func (w *Workspace) Portfolio() ([]tasks.Document, error) {
	paths := w.cfg.PortfolioPaths()
	docs := make([]tasks.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := w.ReadDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+newULID())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
