// Package badger implements the status repository on BadgerDB.
//
// Records are stored under a key derived from the blake2b content ID of the
// document key, with a secondary index keyed by the document key itself so
// that listings come back in key order. Values are encoded with mus-go.
package badger
