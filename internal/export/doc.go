// Package export renders temporal indexes as JSON documents and SRT
// subtitle files, and reads JSON documents back.
package export
