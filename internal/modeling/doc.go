// Package modeling fits and evaluates the two high-severity classifiers.
//
// The training discipline is fixed:
//
//   - StratifiedSplit partitions the complete dataset per class with a seeded
//     shuffle, so the same seed and fraction always give the same partitions.
//   - StandardScaler is fitted on the training partition only and then applied
//     to both partitions. LogisticRegression sees the scaled features.
//   - RandomForest is scale-invariant and is trained on the raw features.
//
// Cross-validation and grid search only ever see the training partition.
// Models are bound to the column order of domain.FeatureColumns; Artifact
// records that order and refuses to score a frame with a different one.
package modeling
