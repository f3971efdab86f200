// Package versioning contains the version number domain type.
//
// A Version is three dot-separated decimal components (major.minor.patch)
// kept exactly as written, leading zeros included. Extract pulls the first
// version out of a line of text, Parse validates user input.
package versioning
