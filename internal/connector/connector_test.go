package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/sift/internal/model"
)

type stubConnector struct{}

func (stubConnector) Stream(context.Context, Config) (<-chan model.Artifact, error) {
	ch := make(chan model.Artifact)
	close(ch)
	return ch, nil
}

func (stubConnector) Query(context.Context, Config, QueryParams) ([]model.Artifact, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register("stub-b", func() Connector { return stubConnector{} })
	Register("stub-a", func() Connector { return stubConnector{} })

	ctor, err := Get("stub-a")
	require.NoError(t, err)
	assert.NotNil(t, ctor())

	_, err = Get("missing")
	assert.EqualError(t, err, "unknown connector provider: missing")

	names := Providers()
	assert.Contains(t, names, "stub-a")
	assert.Contains(t, names, "stub-b")
	assert.IsIncreasing(t, names)
}

func TestApplyKeepsArtifactHints(t *testing.T) {
	cfg := Config{
		AgentHint:      model.LogsAndErrors,
		UserOverride:   model.SourceCode,
		BrowserContext: "grafana",
		Source:         &model.SourceMetadata{SourceURL: "https://example.com"},
	}

	got := cfg.Apply(model.Artifact{Filename: "a.txt", AgentHint: model.StructuredConfig})
	assert.Equal(t, model.StructuredConfig, got.AgentHint)
	assert.Equal(t, model.SourceCode, got.UserOverride)
	assert.Equal(t, "grafana", got.BrowserContext)
	require.NotNil(t, got.Source)
	assert.Equal(t, "https://example.com", got.Source.SourceURL)

	got.Source.SourceURL = "changed"
	assert.Equal(t, "https://example.com", cfg.Source.SourceURL)
}

func TestLogDefaultsToNop(t *testing.T) {
	assert.NotNil(t, Config{}.Log())
}
