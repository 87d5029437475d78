// Package fileutil holds small filesystem helpers shared by the cache and
// the command line.
package fileutil
