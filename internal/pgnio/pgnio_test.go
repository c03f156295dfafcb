package pgnio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olleeriksson/merge-pgn/internal/notation"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeZstd(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer encoder.Close()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encoder.EncodeAll([]byte(content), nil), 0o644))
	return path
}

func TestIsPGNFile(t *testing.T) {
	tests := map[string]bool{
		"games.pgn":     true,
		"games.pgn.zst": true,
		"games.zst":     false,
		"games.txt":     false,
		"pgn":           false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsPGNFile(name), name)
	}
}

func TestOpenPlainAndZstd(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "a.pgn", "1. e4 *")
	packed := writeZstd(t, dir, "b.pgn.zst", "1. d4 *")

	for path, want := range map[string]string{plain: "1. e4 *", packed: "1. d4 *"} {
		rc, err := Open(path)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, want, string(data))
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pgn"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputNotFound))
	assert.False(t, errors.Is(err, ErrInputUnreadable))
	assert.Contains(t, err.Error(), "missing.pgn")
}

func TestLoadFileCorruptZstd(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.pgn.zst", "definitely not zstd")

	_, err := NewLoader(Config{Logger: zerolog.Nop()}).LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputUnreadable))
}

func TestLoadFileStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.pgn", "\uFEFF[Event \"BOM\"]\n\n1. e4 *\n")

	games, err := NewLoader(Config{Logger: zerolog.Nop()}).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, games, 1)
	v, _ := games[0].Tag("Event")
	assert.Equal(t, "BOM", v)
}

func TestLoadFileRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	latin1 := "1. e4 {Tr\xe8s bien} e5 *\n"
	paths := []string{
		writeFile(t, dir, "latin1.pgn", latin1),
		writeZstd(t, dir, "latin1.pgn.zst", latin1),
	}

	l := NewLoader(Config{Logger: zerolog.Nop()})
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			games, err := l.LoadFile(path)
			require.Error(t, err)
			assert.Nil(t, games)
			assert.True(t, errors.Is(err, ErrInputUnreadable))
			assert.True(t, errors.Is(err, notation.ErrEncoding))
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "1.pgn", "1. e4 *\n\n1. d4 *"),
		writeZstd(t, dir, "2.pgn.zst", "1. c4 *"),
		writeFile(t, dir, "3.pgn", "1. Nf3 *"),
	}

	l := NewLoader(Config{Concurrency: 3, Logger: zerolog.Nop()})
	games, err := l.Load(context.Background(), paths)
	require.NoError(t, err)

	var first []string
	for _, g := range games {
		first = append(first, g.Root.Children[0].SAN)
	}
	assert.Equal(t, []string{"e4", "d4", "c4", "Nf3"}, first)
}

func TestLoadParseErrorNamesPath(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.pgn", "1. e4 *")
	bad := writeFile(t, dir, "bad.pgn", "1. e4 ) *")

	_, err := NewLoader(Config{Logger: zerolog.Nop()}).Load(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, notation.ErrSyntax))
	assert.Contains(t, err.Error(), "bad.pgn")

	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, bad, ie.Path)
}

func TestLoadMissingAborts(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.pgn", "1. e4 *")

	_, err := NewLoader(Config{Logger: zerolog.Nop()}).Load(context.Background(), []string{good, filepath.Join(dir, "nope.pgn")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputNotFound))
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "games")
	require.NoError(t, os.Mkdir(sub, 0o755))
	b := writeFile(t, sub, "b.pgn", "*")
	a := writeZstd(t, sub, "a.pgn.zst", "*")
	writeFile(t, sub, "notes.txt", "ignored")
	single := writeFile(t, dir, "single.pgn", "*")

	got, err := ExpandPaths([]string{single, sub})
	require.NoError(t, err)
	assert.Equal(t, []string{single, a, b}, got)

	_, err = ExpandPaths([]string{filepath.Join(dir, "absent")})
	assert.True(t, errors.Is(err, ErrInputNotFound))
}
