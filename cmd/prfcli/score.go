package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prfcli/internal/operations"
)

func newScoreCmd(env *runtimeEnv) *cobra.Command {
	var table, artifact, out string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Predict severity for a cleaned table with a saved model artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := operations.NewPipeline(env.cfg, env.paths, env.metrics, env.logger)
			if err != nil {
				return err
			}
			summary, err := p.Score(cmd.Context(), table, artifact, out)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			okColor.Fprintf(w, "scored %d rows", summary.Rows)
			fmt.Fprintf(w, " (%d dropped as incomplete)\n", summary.Dropped)
			fmt.Fprintf(w, "accuracy against the label: logistic %.3f, random forest %.3f\n",
				summary.LogisticAccuracy, summary.ForestAccuracy)
			fmt.Fprintf(w, "  wrote %s\n", summary.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "cleaned table to score (default: the configured checkpoint)")
	cmd.Flags().StringVar(&artifact, "artifact", "", "model artifact (default: output.model_artifact)")
	cmd.Flags().StringVar(&out, "out", "", "predictions file (default: predicoes.csv in the results directory)")
	return cmd
}
