// Package ir provides the convention data model shared by every other package.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - An Entry holds exactly one payload: a convention value or a delegate func
//   - Entries are immutable once constructed; accessors return copies
//   - Dependencies reference convention types (TypeID), never instances
//   - JSON tags use snake_case; canonical JSON is used for content hashes
package ir
