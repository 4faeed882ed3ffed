// Package ensemble implements the multivariate regression collaborators: a
// feature-importance selector that screens candidate predictors before the
// main regression, and a cross-validated stacked regression ensemble that
// blends base learners into a single forecast.
//
// Both procedures are deterministic by construction (contiguous folds, no
// random sampling), which keeps the whole pipeline reproducible and
// column-order equivariant.
package ensemble
