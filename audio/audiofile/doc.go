// Package audiofile loads WAV and FLAC material as mono float64 and writes
// rendered output as PCM WAV.
package audiofile
