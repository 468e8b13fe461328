package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sift/internal/engine"
	"github.com/crimson-sun/sift/internal/model"
)

type classification struct {
	Filename string `json:"filename,omitempty"`
	model.ClassificationResult
}

func newClassifyCmd(a *app) *cobra.Command {
	f := &artifactFlags{}
	cmd := &cobra.Command{
		Use:   "classify [path...]",
		Short: "Print the data type decided for each artifact without extracting",
		RunE: func(cmd *cobra.Command, args []string) error {
			connCfg, err := f.connectorConfig(a, args)
			if err != nil {
				return err
			}
			conn, err := openConnector(connCfg.Provider)
			if err != nil {
				return err
			}
			arts, err := conn.Query(cmd.Context(), connCfg, f.queryParams(a))
			if err != nil {
				return err
			}

			eng := engine.New(nil, nil, nil, a.logger)
			enc := json.NewEncoder(a.stdout)
			for _, art := range arts {
				if err := enc.Encode(classification{Filename: art.Filename, ClassificationResult: eng.Classify(art)}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
