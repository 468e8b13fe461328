package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
)

// artifactFlags are the hints shared by every command that reads artifacts.
type artifactFlags struct {
	dataType       string
	hint           string
	browserContext string
	sourceURL      string
	sourceType     string
	provider       string
	stdinName      string
	limit          int
}

func (f *artifactFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.dataType, "type", "t", "", "force the data type (user override)")
	fl.StringVar(&f.hint, "hint", "", "data type suggested by a calling agent")
	fl.StringVar(&f.browserContext, "context", "", "page title or app name the artifact came from")
	fl.StringVar(&f.sourceURL, "url", "", "URL the artifact was captured from")
	fl.StringVar(&f.sourceType, "source-type", "", "file_upload, page_capture, paste or api")
	fl.StringVar(&f.provider, "provider", "", "artifact source: file or ndjson (default from input.provider)")
	fl.StringVar(&f.stdinName, "stdin-name", "", "filename given to an artifact read from stdin")
	fl.IntVar(&f.limit, "limit", 0, "stop after this many artifacts (0 = all)")
}

func (f *artifactFlags) connectorConfig(a *app, paths []string) (connector.Config, error) {
	cfg := connector.Config{
		Provider:       a.cfg.Input.Provider,
		Paths:          paths,
		Stdin:          a.stdin,
		StdinName:      f.stdinName,
		Settle:         a.cfg.Input.Settle,
		BrowserContext: f.browserContext,
		Logger:         a.logger,
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if cfg.Provider == "file" && len(cfg.Paths) == 0 {
		cfg.Paths = []string{"-"}
	}

	var err error
	if cfg.UserOverride, err = parseType("--type", f.dataType); err != nil {
		return cfg, err
	}
	if cfg.AgentHint, err = parseType("--hint", f.hint); err != nil {
		return cfg, err
	}

	if f.sourceURL != "" || f.sourceType != "" {
		st := model.SourceType(f.sourceType)
		switch st {
		case "", model.SourceFileUpload, model.SourcePageCapture, model.SourcePaste, model.SourceAPI:
		default:
			return cfg, fmt.Errorf("--source-type %q must be file_upload, page_capture, paste or api", f.sourceType)
		}
		cfg.Source = &model.SourceMetadata{SourceURL: f.sourceURL, SourceType: st}
	}
	return cfg, nil
}

func (f *artifactFlags) queryParams(a *app) connector.QueryParams {
	return connector.QueryParams{Limit: f.limit, MaxBytes: a.cfg.Input.MaxBytes}
}

func parseType(flag, s string) (model.DataType, error) {
	if s == "" {
		return "", nil
	}
	dt, ok := model.ParseDataType(s)
	if !ok {
		return "", fmt.Errorf("%s %q is not a known data type", flag, s)
	}
	return dt, nil
}

func openConnector(name string) (connector.Connector, error) {
	ctor, err := connector.Get(name)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}
