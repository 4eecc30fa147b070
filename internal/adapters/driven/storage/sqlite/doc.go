// Package sqlite persists patient documents, alerts and raw profiles in one
// SQLite file (default ~/.postop/data/postop.db) through modernc.org/sqlite,
// so the binary needs no cgo.
//
// Similarity search is a brute-force scan over the requesting patient's
// rows only, ranked by cosine distance in Go. A patient has a handful of
// documents, so no ANN index is needed.
//
// The schema comes from the embedded migrations package and is upgraded on
// open. The database runs in WAL mode; re-ingestion swaps a patient's
// documents in a single transaction.
package sqlite
