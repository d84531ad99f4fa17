// Package menutree converts between the nested node structure clients submit
// and the flat, depth-first arena the synchronization engine materializes.
//
// Decode checks the wire shape, Normalize flattens and defaults it, and
// Build reassembles persisted items into a nested tree. None of them recurse,
// so tree depth is bounded only by the JSON decoder.
package menutree
