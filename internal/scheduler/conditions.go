package scheduler

import "github.com/shiftdl/shiftdl/pkg/tariff"

// Conditions is a snapshot of the network state supplied by the monitoring
// collaborator. It is replaced wholesale on each update and never mutated
// in place.
type Conditions struct {
	// Connected reports whether any usable connection exists. Without a
	// connection nothing may transfer.
	Connected bool

	// Metered reports whether the connection is usage-billed. Informational
	// for now; admission is governed by the tariff.
	Metered bool

	// Tariff governing the connection, or nil when none applies.
	Tariff *tariff.Tariff
}
