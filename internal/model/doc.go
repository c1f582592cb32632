// Package model defines the scenario document: the flowsheet graph of unit
// operations and stream links plus its scalar assumption and override maps.
//
// The document is the single source of truth exchanged on the wire, stored
// on disk, and edited by compiled patches. Serialization is deliberately
// strict about shape: scalar maps preserve first-insertion key order, empty
// collections encode as [] and {} rather than null, and a scenario that is
// serialized, deserialized, and serialized again reproduces its JSON byte
// for byte.
package model
