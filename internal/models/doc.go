// Package models defines the domain entities shared by the Little Helpers
// micro-apps.
//
// # Cost split
//
//   - Project: a named group of people sharing expenses
//   - Person: a project member, identified by ID (names may collide)
//   - Expense: an amount paid by one person, split among participants
//   - Settlement: a suggested payment between two people (derived, never stored)
//
// # Other helpers
//
//   - TodoItem: to-do list entry with flag and completion state
//   - CountdownEvent: a dated event counted down to (or up from)
//   - TimerPreset: fitness timer configuration (interval/break/rounds)
//   - RateTable: cached currency exchange rates
//
// # Design principles
//
//  1. Entities reference each other by ID, not by pointer, so they serialize
//     cleanly and avoid circular references.
//  2. Money fields use decimal.Decimal throughout. Amounts round-trip through
//     JSON as strings without precision loss.
//  3. All structs carry JSON tags; the serialized shape is the persistence
//     format of the key-value store and the API wire format.
package models
