// Package executor binds a transaction record to the ledger operation it
// requests. It validates the record, performs the withdrawal pre-check and
// makes the single ledger call. Scheduling is the processor's business.
package executor
