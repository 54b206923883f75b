// Package magetasks holds the build, lint and test tasks behind the
// Magefile, grouped the way the Magefile namespaces expose them.
package magetasks
