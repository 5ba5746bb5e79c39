// Package library implements the services of the book catalog: the book
// collection, long-form impressions, reading status tracking and the v1 to v2
// data migration. All persistence goes through the storage repository; the
// services themselves hold no state between calls, so a single process that
// serializes its calls gets consistent data. There is no cross-process
// locking: concurrent writers from separate processes are last-writer-wins.
package library

import "go.uber.org/zap"

// Service bundles the catalog services for front ends.
type Service struct {
	Books       *BookService
	Impressions *ImpressionService
	Status      *StatusService
	Migrator    *Migrator
}

// New wires the services over one migration-capable store. The migration
// engine must run before anything else reads the collections; front ends call
// Migrator.MigrateFromV1 once at startup.
func New(store MigrationStore, lookup Lookup, logger *zap.Logger) *Service {
	impressions := NewImpressionService(store, store.Dir())
	return &Service{
		Books:       NewBookService(store, lookup, impressions, logger),
		Impressions: impressions,
		Status:      NewStatusService(store),
		Migrator:    NewMigrator(store, logger),
	}
}
