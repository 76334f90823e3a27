// Package resource implements the client side of the remote resource
// store: a generic CRUD proxy per collection that keeps a local mirror of
// what the store has confirmed.
//
// # Wire protocol
//
// Each collection C is served at {origin}/{C}:
//
//	list    GET    /{C}        2xx + JSON array
//	get     GET    /{C}/{id}   2xx + JSON object
//	create  POST   /{C}        2xx + JSON echo of the created record
//	update  PUT    /{C}/{id}   2xx + JSON echo of the replaced record
//	delete  DELETE /{C}/{id}   exactly 200
//
// Delete is strict: 204 and 404 are failures, not an idempotent success.
//
// # Mirror rules
//
//   - ListAll replaces the mirror wholesale; on failure it is unchanged.
//   - GetByID and FetchAll never touch the mirror.
//   - Create appends the echo, Update replaces by id, Delete removes by id,
//     each only after the store accepted the call.
//   - Todos.ToggleDone is the one operation that writes the mirror before
//     the store answers.
//
// # Errors
//
// Every failed call returns a *TransportError (non-accepted status,
// network failure or undecodable body). A 404 unwraps to ErrNotFound, any
// other rejected status to ErrUnexpectedStatus. Nothing is retried.
//
// # Concurrency
//
// Calls are neither queued nor de-duplicated. Two updates of the same id
// race and the mirror keeps the response reconciled last.
package resource
