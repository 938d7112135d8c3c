// Package tree defines the abstract JSON-like value tree the conversion
// engine reads and writes, decoupling it from any concrete JSON library;
// Parse and Marshal bridge the tree to JSON bytes.
package tree
