// Package textfile reads and rewrites line-oriented text files.
//
// The FileRepository finds the first line matching a pattern and rewrites the
// matching lines of a file in place. Rewrites go through a temporary file and
// go-update, which swaps it in with two renames and rolls the original back
// if the swap fails.
package textfile
