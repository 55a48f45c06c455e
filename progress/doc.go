// Package progress keeps aggregated transaction counters (submitted,
// running, completed, failed, dropped notifications) for one teller instance.
package progress
