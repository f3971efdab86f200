// Package synchronizer bumps the version number of a project.
//
// It reads the current version from the anchor line of the primary target,
// asks for a new one on a LineSource, and rewrites the anchor line of every
// configured target. Targets are independent: a failing file is reported and
// the remaining ones are still rewritten.
package synchronizer
