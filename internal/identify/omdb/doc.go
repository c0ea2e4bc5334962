// Package omdb fetches best-effort enrichment (director, content rating) from
// the OMDB API by IMDB identifier.
package omdb
