// Package ledger implements the account table. A single mutex serialises
// every read and write, which gives all mutations one total order.
//
// Each account lives in one allocator page. The ledger also keeps a
// compacted array of accounts that is scanned for lookups; page storage is
// kept in sync on every mutation. Because the allocator reclaims the least
// recently used page when the pool is full, an old account's page can be
// handed to a new account. The old account keeps working off the compacted
// array while its page now holds someone else's data; Resident reports this.
package ledger
