// Package connectors holds the sources patient profiles are read from.
// The profiles subpackage loads YAML and JSON profile files, watches a
// directory for changes and carries the bundled seed patients.
package connectors
