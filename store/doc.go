// Package store holds the pieces shared by the backend packages under it:
// memory, redis, postgres and sqlite. Each backend implements one or more
// of the domain store contracts.
package store
