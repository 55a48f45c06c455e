// Package processor runs one goroutine per submitted transaction. Every
// worker executes its record once, settles the record status in the registry
// and reports the outcome on a notification endpoint. Terminate cancels a
// worker cooperatively: the token is only observed before and after the
// ledger call.
package processor
