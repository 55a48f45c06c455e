// Package teller provides an in-process concurrent transaction core for a
// small banking ledger.
//
// The core is assembled from pluggable service layers:
//
//   - allocator: fixed pool of account storage pages with LRU reclaim
//   - ledger: account table guarded by a single lock
//   - processor: one worker per submitted transaction
//   - accountant: round-robin bookkeeping and metrics
//   - notification: named bounded endpoints reporting outcomes
//
// End-users typically interact with the core via the Service facade exposed
// by the root package:
//
//	srv, _ := teller.New()
//	_ = srv.CreateAccount(1, 50)
//	id, _ := srv.Submit(ctx, model.OperationDeposit, 1, 20)
//	msg, _ := srv.ReceiveNotification(ctx)
//
// Submission is fire-and-forget: failures of a transaction are recorded on
// its status and reported on the notification endpoint, never returned to
// the submitter.
package teller
