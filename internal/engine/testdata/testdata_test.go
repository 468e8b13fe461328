package testdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/sift/internal/model"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	seen := make(map[string]bool)
	for i, e := range entries {
		require.NotEmpty(t, e.Name, "entry[%d] has empty name", i)
		require.False(t, seen[e.Name], "duplicate entry name %q", e.Name)
		seen[e.Name] = true

		_, ok := model.ParseDataType(e.ExpectedType)
		require.True(t, ok, "entry %q has unknown expected_type %q", e.Name, e.ExpectedType)
		require.Greater(t, e.MinConfidence, 0.0, "entry %q", e.Name)
	}
}

func TestCorpusCoversEveryType(t *testing.T) {
	entries, err := LoadCorpus()
	require.NoError(t, err)

	covered := make(map[string]bool)
	for _, e := range entries {
		covered[e.ExpectedType] = true
	}
	for _, dt := range model.AllDataTypes {
		require.True(t, covered[string(dt)], "no corpus entry for %s", dt)
	}
}
