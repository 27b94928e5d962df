// Package scheduler owns the set of live download entries and decides,
// from the current network and tariff conditions, which of them may
// transfer. All state transitions happen inside a single evaluation step
// so external observers never see a half-applied schedule.
package scheduler
