// Package arma implements the univariate nonlinear autoregressive
// collaborators: a seasonal-lag forecaster and a grid-search hyperparameter
// optimizer that chooses periodicities, blending weights, projection method
// and a bias-shift correction against a caller-supplied objective.
package arma
