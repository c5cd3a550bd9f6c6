// Package progress keeps aggregated operation counters for a scheduler so
// hosts can observe how much of the graph has run without walking it.
package progress
