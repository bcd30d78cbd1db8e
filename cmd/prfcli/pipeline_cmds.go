package main

import (
	"github.com/spf13/cobra"

	"prfcli/internal/operations"
)

// modelFlags are the modeling overrides shared by analyze and model
type modelFlags struct {
	seed     int64
	trees    int
	skipGrid bool
	artifact string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed for split, forest and folds")
	cmd.Flags().IntVar(&f.trees, "trees", 0, "number of random forest trees")
	cmd.Flags().BoolVar(&f.skipGrid, "skip-grid-search", false, "skip the random forest grid search")
	cmd.Flags().StringVar(&f.artifact, "artifact", "", "save the fitted models to this file")
}

func (f *modelFlags) apply(cmd *cobra.Command, env *runtimeEnv) error {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		env.cfg.Modeling.Seed = f.seed
	}
	if flags.Changed("trees") {
		env.cfg.Modeling.ForestTrees = f.trees
	}
	if flags.Changed("skip-grid-search") {
		env.cfg.Modeling.SkipGridSearch = f.skipGrid
	}
	if flags.Changed("artifact") {
		env.cfg.Output.ModelArtifact = f.artifact
		env.paths.ModelArtifact = f.artifact
	}
	return env.cfg.Validate()
}

func newAnalyzeCmd(env *runtimeEnv) *cobra.Command {
	var mf modelFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full pipeline from the yearly extracts to the diagnostics text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mf.apply(cmd, env); err != nil {
				return err
			}
			p, err := operations.NewPipeline(env.cfg, env.paths, env.metrics, env.logger)
			if err != nil {
				return err
			}
			resp, err := p.Analyze(cmd.Context())
			return finish(cmd.OutOrStdout(), resp, err)
		},
	}
	mf.register(cmd)
	return cmd
}

func newCleanCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Ingest and clean the yearly extracts and export the cleaned table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := operations.NewPipeline(env.cfg, env.paths, env.metrics, env.logger)
			if err != nil {
				return err
			}
			resp, err := p.Clean(cmd.Context())
			return finish(cmd.OutOrStdout(), resp, err)
		},
	}
}

func newModelCmd(env *runtimeEnv) *cobra.Command {
	var (
		mf    modelFlags
		table string
	)
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Run statistics, modeling and the report on an exported cleaned table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mf.apply(cmd, env); err != nil {
				return err
			}
			p, err := operations.NewPipeline(env.cfg, env.paths, env.metrics, env.logger)
			if err != nil {
				return err
			}
			resp, err := p.Model(cmd.Context(), table)
			return finish(cmd.OutOrStdout(), resp, err)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "cleaned table to load (default: the configured checkpoint)")
	mf.register(cmd)
	return cmd
}
