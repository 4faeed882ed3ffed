// Package multivar orchestrates the joint multi-series forecast.
//
// A forecast runs in four stages. First every series is forecast
// independently on a bounded worker pool: seasonal period detection,
// hyperparameter optimization against a held-out validation window, an
// h-step autoregressive forecast and a bias correction. Second, the
// forecasts are appended beneath the history and the extended matrix is
// expanded into a lagged feature frame. Third, each series' forecast is
// refined sequentially against the frame through feature selection and a
// cross-validated stacked regression. Finally the univariate and refined
// forecasts are averaged into the result.
//
// The stages share one objective function and fail as a unit: the first
// collaborator error aborts the whole forecast after the worker pool has
// drained. All default collaborators are deterministic, so repeated calls
// with identical inputs return identical results regardless of worker
// counts or status reporting.
package multivar
