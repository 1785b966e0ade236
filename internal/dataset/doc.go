// Package dataset holds the launch records the dashboard is built on. The
// dataset is read from CSV once at startup and never mutated afterwards, so a
// *Dataset can be shared by every request and session without locking.
package dataset
