// Package report renders the memory map, the schedule chart and the
// accounting metrics as text and optionally stores the rendering with afs.
package report
