// Package file stores postop configuration on local disk: settings in a
// TOML file and the editable prompt templates next to it.
package file
