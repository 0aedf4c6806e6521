// Package memory provides in-process implementations of the domain store
// contracts. Every store guards a map with a sync.RWMutex: lookups take the
// read lock and mutations take the write lock.
//
// These stores are the default backends for tests and single-instance
// deployments. State does not survive a restart.
package memory
