// Package scenario replays scripted account and transaction steps, loaded
// from YAML, against a transaction core and records the observed outcomes.
package scenario
