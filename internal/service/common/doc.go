// Package common holds helpers shared by several services.
//
// It provides the run marker that keeps two synchronizations from rewriting
// the same project at once.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
