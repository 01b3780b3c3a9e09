// Package record provides a generic persisted entity for the state machine
// engine. A Record holds string attributes, tracks which of them changed and
// writes the changes through a Persister with optimistic versioning: a write
// made against a stale Version fails with ErrConflict instead of overwriting a
// concurrent transition.
//
// MemoryStore is the in-process Persister. The pgstore, redisstore and
// mongostore packages provide database-backed ones with the same contract.
package record
