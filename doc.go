// Package structdiff converts struct instances to and from a JSON value tree
// using a baseline instance: serialization emits only fields that differ from
// the baseline, deserialization copies the baseline into the destination and
// overlays only the fields present in the tree, allocating owned substructures
// on demand.
package structdiff
