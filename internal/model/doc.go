// Package model defines the records exchanged with the remote resource
// store and the state held by the session and notification containers.
//
// Todo and User satisfy resource.Record through RecordID. Ids are
// generated client-side (UUID v4) before a record is created; the remote
// store is responsible for uniqueness.
//
// Wire shapes:
//
//	Todo:         {"id": "...", "label": "...", "done": false}
//	User:         {"id": "...", "username": "...", "email": "...",
//	               "password": "<bcrypt hash>", "createdAt": "<RFC 3339>"}
//	Notification: {"message": "...", "type": "success|error|warning"}
package model
