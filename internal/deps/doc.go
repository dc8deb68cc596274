// Package deps derives the build order of a design from the declaration text
// of its top module.
//
// Scanning is a line-based substring heuristic:
//
//   - a line containing both "use" and "pkg" references a package, named by
//     the dot-separated segment that contains "pkg";
//   - a line containing both ":" and "entity" instantiates a module, named by
//     the last dot-separated segment up to any "(architecture)" qualifier.
//
// Everything else is ignored. Trailing "--" comments are dropped before
// matching, but string literals and block constructs are not understood, so a
// line that merely mentions the markers is still classified.
//
// Build order is packages, then instantiated modules, then the top module.
package deps
