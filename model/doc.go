// Package model contains the value types shared by the teller services:
// accounts, transaction records, completion messages and the read-only views
// returned by the memory map and schedule dumps.
//
// The types carry no synchronisation of their own. Services that own them
// (ledger, registry, notification queue) hand out copies.
package model
