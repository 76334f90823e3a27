// Package storage provides the persistent key-value capability the
// session and notification containers depend on.
//
// # Overview
//
// The containers only need get/put/delete on a handful of fixed keys,
// so the Store interface stays small and every backend satisfies the
// same contract:
//
//	┌─────────────────────────────────────┐
//	│ session.Container  notify.Container │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│           Store interface           │
//	└─────────────────────────────────────┘
//	                 │
//	    ┌────────────┼────────────┐
//	    ▼            ▼            ▼
//	┌────────┐  ┌────────┐  ┌────────┐
//	│ Memory │  │  File  │  │ SQLite │
//	└────────┘  └────────┘  └────────┘
//
// # Implementations
//
// MemoryStore: map guarded by sync.RWMutex
//   - Nothing survives the process
//   - Used by tests and by the "memory" driver
//
// FileStore: one JSON object on disk
//   - Loaded at open, rewritten atomically (temp file + rename) on change
//   - File mode 0600, directory 0700
//
// SQLiteStore: single kv table via zombiezen.com/go/sqlite
//   - WAL journal, connection pool
//   - ":memory:" for throwaway databases
//
// # Semantics
//
// Get returns ErrKeyNotFound for absent keys. Delete of an absent key
// succeeds. Stores treat values as opaque bytes; GetJSON and PutJSON
// layer JSON encoding on top for the containers.
//
// The containers treat the store as synchronous and always available:
// a failed write is logged by the caller and the in-memory state still
// transitions.
package storage
