// Package core provides the row-ordering and view-state logic for the financial summary table.
//
// This package is the heart of the report viewer, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around four components, leaves first:
//
//   - Value Formatter: [Format] turns a number, currency and precision into a cell.
//   - Pagination Controller: [Paginator] slices the order into fixed-size pages
//     and clamps navigation at both ends.
//   - Row Order Store: [OrderStore] holds the full order and applies [Reorder],
//     which resolves rows by identity, never by position.
//   - View Composer: [Composer] owns the [ViewState] and ties the other three
//     together behind [Composer.Apply] and [Composer.Render].
//
// Formatting and pagination never touch the order; reordering never touches
// the numbers or the page index.
//
// # Reordering across pages
//
// The interaction layer sees only the current page. Drags are resolved to row
// identities at that boundary ([Composer.ResolveVisibleMove]) and the move is
// then applied against the full order, so moving a row within page 3 can never
// disturb the rows on page 1:
//
//	c := core.NewComposer(ds)
//	c.NextPage()
//	c.NextPage()
//	c.OnReorder("Marketing", "R&D") // Marketing takes R&D's index in the full order
//
// # Sessions
//
// [Service] hosts one Composer per session over a shared [Dataset]. Snapshots
// ([State]) are kept in a [StateStore] only for the session's lifetime, and
// events for one session are serialised so they apply in arrival order.
//
// # Error Handling
//
// Nothing in the core is fatal. Unknown rows, unsupported currencies or
// precisions are ignored and reported through sentinel errors that
// [MapError] turns into user messages with support codes (VIEW001-VIEW005).
package core
