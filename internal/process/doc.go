// Package process starts external tools in their own process group and
// tears the whole group down on cancellation.
package process
