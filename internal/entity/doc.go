// Package entity provides the entity system of the server: the entity
// type catalog built from configuration, the gorm-backed entity storage,
// and the route parameter converter that loads entities from path
// values.
package entity
