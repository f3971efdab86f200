// Package config defines the targets rewritten by version-sync.
//
// A Target names a file, the regular expression of its anchor line and the
// template written over the matched text. The list is compiled in; Default
// returns it rooted at a directory and Validate checks it before use.
package config
