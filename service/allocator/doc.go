// Package allocator owns the fixed pool of pages that back account storage.
// It never grows: when every page is in use the least recently touched page
// is handed out again, whether or not its previous owner still needs it.
package allocator
