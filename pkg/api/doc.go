// Package api exposes the parts catalog over HTTP: part and guide browsing,
// catalog listings, association management, precomputed analytics, and the
// health endpoints. Search is mounted from pkg/search; this package owns
// everything else on the router.
package api
