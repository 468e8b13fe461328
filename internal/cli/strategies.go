package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/sift/internal/engine"
	"github.com/crimson-sun/sift/internal/engine/extractor"
	"github.com/crimson-sun/sift/internal/model"
)

func newStrategiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the extraction strategy used for each data type",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			reg := extractor.Default(a.cfg.Engine.DirectLimit)
			data := pterm.TableData{{"Data type", "Strategy"}}
			for _, dt := range model.AllDataTypes {
				name := engine.StrategyReferenceOnly
				if ext, ok := reg.Get(dt); ok {
					name = ext.StrategyName()
				}
				data = append(data, []string{dt.String(), name})
			}
			data = append(data, []string{"(classification failed)", engine.StrategyClassificationFailed})

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, table)
			return err
		},
	}
}
