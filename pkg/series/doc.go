// Package series provides the Series Matrix: an ordered, named collection
// of equal-length numeric sequences observed contemporaneously over a shared
// time index, plus CSV input and output for it.
//
// The Matrix is the read-only input of the forecasting pipeline. All derived
// data (forecast extensions, lagged feature frames) is created from copies;
// nothing in this package mutates a constructed Matrix.
package series
