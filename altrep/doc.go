// Package altrep expands and builds compact representations (ALTREP) of R
// vectors.
//
// A compact node carries an info pairlist naming its class and package, a
// class specific state and the attributes of the vector it stands for. A
// Registry maps (class, package) to an Expander that materializes the plain
// vector from the state. Registries are values: each parse gets its own, so
// independent sessions never share mutable state.
//
//	reg := altrep.Default()
//	reg.Register(altrep.Key{Class: "my_seq", Package: "mypkg"}, expandMySeq)
//	plain, err := reg.Expand(node)
//
// Only the classes R itself writes are built in: compact_intseq,
// compact_realseq, deferred_string and the wrap_* wrappers.
package altrep
