// Package core holds the configuration defaults and numeric helpers shared
// by the DSP packages.
package core
