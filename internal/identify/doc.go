// Package identify turns a scanned code or a free-text title into an
// unpersisted catalog candidate using remote services.
//
// ResolveByCode walks an ordered chain of strategies: a TMDB external-ID
// lookup, then a small static seed table that maps a handful of well-known
// codes to titles. Each strategy reports Found, Defer (try the next tier), or
// Failed, which keeps the fallback order explicit and makes adding or removing
// tiers safe. Title resolution fetches full details with billed cast and
// merges best-effort OMDB enrichment; enrichment failures are logged and never
// surfaced.
//
// Every failure class (transport, upstream status, zero results) reaches the
// caller as a single failed outcome with a human-readable reason. Nothing here
// retries automatically and nothing here touches the catalog store.
package identify
