// Package compose applies an ordered convention sequence to a context.
//
// A Composer walks the sequence of a Source in order and invokes every
// entry whose payload has the capability it expects: either the convention
// interface C or exactly the delegate func type D. Other entries are
// skipped. The first invocation error stops the walk and is returned as is.
// Nothing already applied is rolled back.
package compose
