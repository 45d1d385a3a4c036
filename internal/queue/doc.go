// Package queue persists pipeline items in SQLite and exposes helpers
// for driving their lifecycle.
//
// The Store manages database connections, schema migrations, stats
// queries, heartbeat tracking, stuck-item recovery, and the status
// transitions the workflow manager walks items through. Queue items
// carry artifact paths (transcript, keywords, plan, output) so stages
// can coordinate without additional state.
//
// The database is transient storage for in-flight jobs rather than a
// long-term archive. Schema changes add a migration under migrations/.
package queue
