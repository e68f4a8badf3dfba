// Package outputs reconciles heterogeneous node outputs across edges.
//
// Each node offers one canonical {type, value} output computed on demand
// from its current data. When a node runs, the adapter routes the outputs of
// its direct predecessors into the input slots the node declares, routing by
// output type and materializing URLs into bytes where a slot requires them.
//
// Routing by output type means two same-typed edges into one target collide
// into the same slot. Binding by handle id would disambiguate, but the
// one-output-type-per-slot assumption is kept until confirmed otherwise;
// colliding text contributions concatenate in edge order.
package outputs
