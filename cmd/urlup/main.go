// Package main provides the entry point for the urlup CLI.
//
// urlup finds URLs in text files and verifies that each one responds
// over HTTP. Broken links are reported with the file and line where
// they first appear.
//
// Usage:
//
//	urlup README.md
//	urlup --recursive docs/
//
// See --help for all available options.
package main

// main is the entry point for urlup.
func main() {
	Execute()
}
