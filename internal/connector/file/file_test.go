package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(arts []model.Artifact) []string {
	out := make([]string, len(arts))
	for i, a := range arts {
		out[i] = filepath.Base(a.Filename)
	}
	return out
}

func TestRegistered(t *testing.T) {
	ctor, err := connector.Get(Provider)
	require.NoError(t, err)
	assert.IsType(t, &Connector{}, ctor())
}

func TestQueryDirectoryTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.log"), "ERROR b")
	writeFile(t, filepath.Join(dir, "a.yaml"), "key: value")
	writeFile(t, filepath.Join(dir, "nested", "c.py"), "def f(): pass")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: main")
	writeFile(t, filepath.Join(dir, ".env"), "SECRET=1")

	arts, err := (&Connector{}).Query(context.Background(), connector.Config{Paths: []string{dir}}, connector.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.log", "c.py"}, names(arts))
	assert.Equal(t, "ERROR b", arts[1].Content)
}

func TestQueryAppliesHints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "hello")

	cfg := connector.Config{
		Paths:     []string{path},
		AgentHint: model.UnstructuredText,
		Source:    &model.SourceMetadata{SourceType: model.SourceFileUpload},
	}
	arts, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{})
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, path, arts[0].Filename)
	assert.Equal(t, model.UnstructuredText, arts[0].AgentHint)
	assert.Equal(t, model.SourceFileUpload, arts[0].SourceTypeOf())
}

func TestQueryLimitAndMaxBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.txt"), "one")
	writeFile(t, filepath.Join(dir, "2.txt"), strings.Repeat("x", 2048))
	writeFile(t, filepath.Join(dir, "3.txt"), "three")
	writeFile(t, filepath.Join(dir, "4.txt"), "four")

	c := &Connector{}
	arts, err := c.Query(context.Background(), connector.Config{Paths: []string{dir}}, connector.QueryParams{MaxBytes: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.txt", "3.txt", "4.txt"}, names(arts))

	arts, err = c.Query(context.Background(), connector.Config{Paths: []string{dir}}, connector.QueryParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.txt", "2.txt"}, names(arts))
}

func TestQueryStdin(t *testing.T) {
	cfg := connector.Config{
		Paths:     []string{StdinPath},
		Stdin:     strings.NewReader("panic: boom"),
		StdinName: "paste.log",
	}
	arts, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{})
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "paste.log", arts[0].Filename)
	assert.Equal(t, "panic: boom", arts[0].Content)
}

func TestQueryErrors(t *testing.T) {
	c := &Connector{}
	_, err := c.Query(context.Background(), connector.Config{}, connector.QueryParams{})
	assert.ErrorIs(t, err, errNoPaths)

	_, err = c.Query(context.Background(), connector.Config{Paths: []string{"/does/not/exist"}}, connector.QueryParams{})
	assert.ErrorContains(t, err, "file connector")
}

func TestStreamWithoutFollowCloses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), "a")
	writeFile(t, filepath.Join(dir, "b.log"), "b")

	ch, err := (&Connector{}).Stream(context.Background(), connector.Config{Paths: []string{dir}})
	require.NoError(t, err)

	var got []model.Artifact
	for a := range ch {
		got = append(got, a)
	}
	assert.Equal(t, []string{"a.log", "b.log"}, names(got))
}

func TestStreamFollowsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "existing.log"), "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := connector.Config{Paths: []string{dir}, Follow: true, Settle: 20 * time.Millisecond}
	ch, err := (&Connector{}).Stream(ctx, cfg)
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, "old", first.Content)

	writeFile(t, filepath.Join(dir, "fresh.log"), "new content")
	select {
	case a := <-ch:
		assert.Equal(t, "fresh.log", filepath.Base(a.Filename))
		assert.Equal(t, "new content", a.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("followed file was not emitted")
	}

	cancel()
	for range ch {
	}
}

func TestFollowRejectsStdin(t *testing.T) {
	_, err := (&Connector{}).Stream(context.Background(), connector.Config{Paths: []string{StdinPath}, Follow: true})
	assert.ErrorContains(t, err, "cannot follow stdin")
}
