// Package config provides configuration structures and utilities for urlup.
// It defines the options for URL discovery, validation behavior, and report
// output, along with YAML config file loading and validation.
package config
