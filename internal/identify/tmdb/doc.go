// Package tmdb provides the narrow slice of The Movie Database API the
// resolution pipeline consumes: external-ID lookup by scanned code, title
// search, and detail fetches with credits.
package tmdb
