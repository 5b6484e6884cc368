// Package clause defines the immutable input model for query
// compilation: clauses, clause trees, declared parameters, and the
// small value-type system the compiler uses to decide case
// foldability and placeholder typing.
//
// A Tree is an ordered collection of Groups. Clauses within a Group
// combine with AND; Groups combine with OR. Trees are produced by an
// upstream definition loader (see internal/querydef) and never
// mutated by the compiler.
package clause
