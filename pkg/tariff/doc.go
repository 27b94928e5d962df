// Package tariff models network connection tariffs: named collections of
// (possibly recurring) time periods, each carrying a capacity limit for the
// data volume permitted within one instance of the period.
//
// A built Tariff is an immutable value and is safe for concurrent lookups
// without locking. Callers that need to change a tariff replace it
// wholesale.
//
// The package also provides the versioned binary file format used to
// persist tariffs, and the human-readable rendering used by the dump and
// lookup commands.
package tariff
