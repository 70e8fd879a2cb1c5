// Package combat holds the pure rules of an encounter: initiative ordering,
// the PLANNING -> ACTIVE -> COMPLETED lifecycle, and hit point arithmetic.
//
// Nothing here performs I/O or authorization. The encounter orchestrator
// loads an aggregate, checks ownership, calls into this package to mutate
// it, and persists the result.
package combat
