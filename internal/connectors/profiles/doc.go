// Package profiles reads patient profiles from disk.
//
// A profile file is YAML (.yaml, .yml) or JSON (.json). The patient ID is the
// file's patient_id field, or the file name without its extension. Hidden
// files are ignored.
//
// Watcher follows a directory with fsnotify and reports created or changed
// profiles after a short debounce, so editors that write in several steps
// trigger one re-ingestion.
package profiles
