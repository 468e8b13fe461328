package ndjson

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
)

const input = `{"filename":"app.log","content":"ERROR boom","agent_hint":"logs_and_errors"}

{"filename":"cfg.yaml","content":"a: 1","user_override":"STRUCTURED_CONFIG","source_url":"https://github.com/x/y","source_type":"api"}
not json
{"filename":"notes.txt","content":"hi","agent_hint":"poetry"}
`

func TestQueryDecodesRequests(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := connector.Config{Stdin: strings.NewReader(input), Logger: zap.New(core)}

	arts, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{})
	require.NoError(t, err)
	require.Len(t, arts, 3)

	assert.Equal(t, "app.log", arts[0].Filename)
	assert.Equal(t, model.LogsAndErrors, arts[0].AgentHint)

	assert.Equal(t, model.StructuredConfig, arts[1].UserOverride)
	require.NotNil(t, arts[1].Source)
	assert.Equal(t, "https://github.com/x/y", arts[1].Source.SourceURL)
	assert.Equal(t, model.SourceAPI, arts[1].Source.SourceType)

	assert.Empty(t, arts[2].AgentHint)
	assert.Nil(t, arts[2].Source)

	assert.Equal(t, 1, logs.FilterMessage("ndjson connector: skipping malformed line").Len())
	assert.Equal(t, 1, logs.FilterMessage("ndjson connector: ignoring unknown data type").Len())
}

func TestQueryLimitAndDefaults(t *testing.T) {
	cfg := connector.Config{
		Stdin:          strings.NewReader(input),
		BrowserContext: "jira",
	}
	arts, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, "jira", arts[0].BrowserContext)
}

func TestQueryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	arts, err := (&Connector{}).Query(context.Background(), connector.Config{Paths: []string{path}}, connector.QueryParams{MaxBytes: 5})
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, "cfg.yaml", arts[0].Filename)
	assert.Equal(t, "notes.txt", arts[1].Filename)
}

func TestQueryRejectsSeveralInputs(t *testing.T) {
	_, err := (&Connector{}).Query(context.Background(), connector.Config{Paths: []string{"a", "b"}}, connector.QueryParams{})
	assert.ErrorContains(t, err, "expected one input")
}

func TestStream(t *testing.T) {
	ch, err := (&Connector{}).Stream(context.Background(), connector.Config{Stdin: strings.NewReader(input)})
	require.NoError(t, err)

	var got []string
	for a := range ch {
		got = append(got, a.Filename)
	}
	assert.Equal(t, []string{"app.log", "cfg.yaml", "notes.txt"}, got)
}

func TestRegistered(t *testing.T) {
	_, err := connector.Get(Provider)
	assert.NoError(t, err)
}
