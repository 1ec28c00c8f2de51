// Package mirror builds the shadowmire configuration document and runs the
// prepare-then-dispatch pipeline around it.
//
// Ownership boundary:
// - document shape and rendering
// - data directory initialization
// - config file persistence
//
// Mirror never fetches packages. All network activity belongs to the
// dispatched shadowmire process.
package mirror
