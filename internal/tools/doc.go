// Package tools hands control to external programs.
//
// Ownership boundary:
// - tool path resolution
// - process replacement and child execution
// - exit status propagation
package tools
