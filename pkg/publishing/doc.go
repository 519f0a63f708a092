// Package publishing provides the revision and publication core for articles
// and pages with pluggable repository backends.
//
// A content item owns at most one revision per state (draft, pending,
// published). Editing always writes the draft; publishing moves the draft to
// pending when the publish time lies in the future and to published
// otherwise; unpublishing moves the live revision back to the draft. Every
// mutation runs inside a single repository transaction, and registered event
// sinks are notified only after that transaction has committed.
//
// Repository implementations (memory, Postgres) live under repo/, the HTTP
// surface under api/, and event sinks under events/, cache/ and archive/.
package publishing
