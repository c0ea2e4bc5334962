// Command shelfscan catalogs physical movie discs. It decodes barcodes from a
// local camera, resolves them against TMDB and OMDB, and keeps the confirmed
// records in a local SQLite catalog that can be listed and searched offline.
package main
