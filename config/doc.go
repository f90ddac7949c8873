// Package config holds the option records sent as the configuration of a
// render request: [Document] for PDF output and [Image] for screenshots.
//
// Setters normalise their input the way the rendering service expects it.
// Out-of-range numbers are clamped and unknown enumerations are ignored,
// so a record always marshals to a valid configuration.
package config
