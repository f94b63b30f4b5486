// Package inputs defines the user-authored graph submitted for compilation:
// triggers and actions keyed by NodeID, directed edges keyed by EdgeID, and
// partial deltas merged into a graph by blind overwrite.
package inputs
