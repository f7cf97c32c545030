// Package persistence keeps the identity of an RDMnet component in a small
// JSON file so that it survives restarts.
//
// A component that comes back with the same CID is handed the same dynamic
// UID by its broker, so controllers keep addressing it without rediscovery.
package persistence
