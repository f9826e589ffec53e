// Package engine orders conventions.
//
// A Provider takes an unordered bag of contributions (convention values and
// delegate funcs) and turns it into one deterministic sequence per host type.
//
// ALGORITHM:
//
//  1. Category filter. Entries outside the allowed set are dropped before
//     anything else and never satisfy another entry's dependency.
//  2. Fast path. With no dependency edges left the result is a stable sort
//     by ascending priority.
//  3. Graph. Edges resolve by convention type, so every registered instance
//     of a type receives them. DependentOf edges are reversed. Delegates never
//     enter the graph.
//  4. Sort. Depth-first over the priority-ordered entries. Revisiting an
//     in-progress node is a cycle and fails the whole resolution.
//  5. Host filter. Applied last, so every host type sees a subsequence of
//     the same order.
//
// Resolution runs at most once per provider. The result, or the failure, is
// memoized and every later call observes the same value.
package engine
