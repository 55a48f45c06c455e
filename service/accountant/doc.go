// Package accountant runs round-robin bookkeeping over the transaction
// registry. It hands out quantum sized slices of a logical time line to every
// record that still needs accounting time and joins a record's worker before
// closing its account. It never decides when a worker runs: execution state
// belongs to the workers, timing fields belong to the accountant.
package accountant
