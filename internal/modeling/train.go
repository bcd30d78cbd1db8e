package modeling

import (
	"context"
	"log/slog"

	"prfcli/pkg/contracts/domain"
)

// TrainOptions configures a full modeling run
type TrainOptions struct {
	TestFraction    float64
	Seed            int64
	CVFolds         int
	GridFolds       int
	LogisticC       float64
	LogisticMaxIter int
	Forest          ForestParams
	Grid            ForestGrid
	SkipGridSearch  bool
}

// DefaultTrainOptions returns the standard run settings
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestFraction:    0.3,
		Seed:            42,
		CVFolds:         5,
		GridFolds:       3,
		LogisticC:       1.0,
		LogisticMaxIter: 1000,
		Forest:          DefaultForestParams(),
		Grid:            DefaultForestGrid(),
	}
}

// Result collects everything a modeling run produces
type Result struct {
	TrainRows      int                   `json:"train_rows"`
	TestRows       int                   `json:"test_rows"`
	TrainPositive  float64               `json:"train_positive_rate"`
	TestPositive   float64               `json:"test_positive_rate"`
	Scaler         *StandardScaler       `json:"-"`
	Logistic       *LogisticRegression   `json:"-"`
	Forest         *RandomForest         `json:"-"`
	LogisticReport *ClassificationReport `json:"logistic_report"`
	ForestReport   *ClassificationReport `json:"forest_report"`
	LogisticCV     *CVResult             `json:"logistic_cv"`
	ForestCV       *CVResult             `json:"forest_cv"`
	Grid           *GridResult           `json:"grid,omitempty"`
	Importances    []FeatureImportance   `json:"importances"`
}

// Train splits, scales, fits both classifiers, evaluates them on the test
// partition, cross-validates them on the training partition and, unless
// disabled, grid-searches the forest. The reported metrics always come from
// the models fitted with the configured parameters.
func Train(ctx context.Context, ds *domain.Dataset, opts TrainOptions, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	train, test, err := StratifiedSplit(ds, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	res := &Result{
		TrainRows:     train.Len(),
		TestRows:      test.Len(),
		TrainPositive: train.PositiveRate(),
		TestPositive:  test.PositiveRate(),
	}
	logger.InfoContext(ctx, "dataset split",
		slog.Int("train", res.TrainRows),
		slog.Int("test", res.TestRows),
		slog.Float64("train_positive_rate", res.TrainPositive),
		slog.Float64("test_positive_rate", res.TestPositive))

	res.Scaler = &StandardScaler{}
	if err := res.Scaler.Fit(train.X); err != nil {
		return nil, err
	}
	trainScaled, err := res.Scaler.Transform(train.X)
	if err != nil {
		return nil, err
	}
	testScaled, err := res.Scaler.Transform(test.X)
	if err != nil {
		return nil, err
	}

	res.Logistic = NewLogisticRegression(opts.LogisticC, opts.LogisticMaxIter, logger)
	if err := res.Logistic.Fit(trainScaled, train.Y); err != nil {
		return nil, err
	}
	pred, err := res.Logistic.Predict(testScaled)
	if err != nil {
		return nil, err
	}
	if res.LogisticReport, err = Evaluate(res.Logistic.Name(), test.Y, pred); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Forest = NewRandomForest(opts.Forest)
	if err := res.Forest.Fit(train.X, train.Y); err != nil {
		return nil, err
	}
	pred, err = res.Forest.Predict(test.X)
	if err != nil {
		return nil, err
	}
	if res.ForestReport, err = Evaluate(res.Forest.Name(), test.Y, pred); err != nil {
		return nil, err
	}
	res.Importances = RankImportances(ds.Columns, res.Forest.FeatureImportances())

	if res.LogisticCV, err = CrossValidate(res.Logistic, trainScaled, train.Y, opts.CVFolds); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.ForestCV, err = CrossValidate(res.Forest, train.X, train.Y, opts.CVFolds); err != nil {
		return nil, err
	}

	if !opts.SkipGridSearch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Grid, err = GridSearch(opts.Forest, opts.Grid, train.X, train.Y, opts.GridFolds, logger); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "grid search finished",
			slog.String("best_max_depth", res.Grid.Best.DepthLabel()),
			slog.Int("best_n_estimators", res.Grid.Best.NEstimators),
			slog.Float64("best_mean_accuracy", res.Grid.Best.MeanScore))
	}

	return res, nil
}
