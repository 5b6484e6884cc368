// Package compile translates clause trees into executable queries.
//
// The compiler consumes two collaborator capabilities through narrow
// interfaces: a Resolver that turns property paths into typed
// expressions, and a Builder that produces predicate, ordering, and
// query nodes. It owns nothing but the fold over the tree and the
// placeholder allocation cursor.
//
// The number and order of placeholders created for a tree is a
// deterministic function of the clause sequence and each operator's
// arity. Callers bind values in that order after compilation.
//
// All failures are structural and raised before any query is
// finalized; see Error.
package compile
