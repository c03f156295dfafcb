// Package pgnio opens PGN inputs (plain or zstd-compressed) and parses them
// concurrently while keeping the order in which paths were given.
package pgnio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/olleeriksson/merge-pgn/internal/notation"
	"github.com/olleeriksson/merge-pgn/internal/tree"
)

var (
	// ErrInputNotFound indicates a path that does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrInputUnreadable indicates a path that exists but cannot be read or decoded.
	ErrInputUnreadable = errors.New("input unreadable")
)

// InputError ties a load failure to its path.
type InputError struct {
	Path string
	Kind error // ErrInputNotFound or ErrInputUnreadable; nil for parse errors
	Err  error
}

func (e *InputError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Is matches the input error kind.
func (e *InputError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Config configures a Loader.
type Config struct {
	Codec       notation.Codec // defaults to notation.PGN
	Concurrency int            // parallel files, defaults to GOMAXPROCS
	Logger      zerolog.Logger
}

// Loader reads and parses input files.
type Loader struct {
	codec notation.Codec
	limit int
	log   zerolog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	if cfg.Codec == nil {
		cfg.Codec = notation.PGN{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Loader{
		codec: cfg.Codec,
		limit: cfg.Concurrency,
		log:   cfg.Logger,
	}
}

// IsPGNFile reports whether name has a .pgn or .pgn.zst extension.
func IsPGNFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == ".pgn" {
		return true
	}
	if ext == ".zst" {
		return filepath.Ext(strings.TrimSuffix(name, ext)) == ".pgn"
	}
	return false
}

// ExpandPaths replaces each directory in paths by the PGN files it
// contains, sorted by name. Other paths are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &InputError{Path: path, Kind: ErrInputNotFound, Err: err}
			}
			return nil, &InputError{Path: path, Kind: ErrInputUnreadable, Err: err}
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		// os.ReadDir returns entries sorted by filename.
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, &InputError{Path: path, Kind: ErrInputUnreadable, Err: err}
		}
		for _, e := range entries {
			if !e.IsDir() && IsPGNFile(e.Name()) {
				out = append(out, filepath.Join(path, e.Name()))
			}
		}
	}
	return out, nil
}

// Open returns a reader over the decoded contents of path. Files ending
// in .zst are decompressed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputError{Path: path, Kind: ErrInputNotFound, Err: err}
		}
		return nil, &InputError{Path: path, Kind: ErrInputUnreadable, Err: err}
	}
	if filepath.Ext(path) != ".zst" {
		return f, nil
	}

	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, &InputError{Path: path, Kind: ErrInputUnreadable, Err: err}
	}
	return &zstdFile{Decoder: dec, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// LoadFile parses every game in path.
func (l *Loader) LoadFile(path string) ([]*tree.Game, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	games, err := l.codec.Parse(rc)
	if err != nil {
		// Anything but a grammar error means the bytes could not be read
		// or decoded.
		var pe *notation.ParseError
		if errors.As(err, &pe) {
			return nil, &InputError{Path: path, Err: err}
		}
		return nil, &InputError{Path: path, Kind: ErrInputUnreadable, Err: err}
	}
	return games, nil
}

// Load parses all paths in parallel. Games are returned in path order, then
// file order. The first failure cancels the remaining work.
func (l *Loader) Load(ctx context.Context, paths []string) ([]*tree.Game, error) {
	start := time.Now()
	perFile := make([][]*tree.Game, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			games, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			perFile[i] = games
			l.log.Debug().Str("file", path).Int("games", len(games)).Msg("parsed input")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var games []*tree.Game
	for _, fg := range perFile {
		games = append(games, fg...)
	}
	l.log.Info().
		Int("files", len(paths)).
		Int("games", len(games)).
		Dur("elapsed", time.Since(start)).
		Msg("inputs loaded")
	return games, nil
}
