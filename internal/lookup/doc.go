// Package lookup turns scanned identifiers into pre-filled candidate records.
//
// The Resolver queries the Snipe-IT registry in a fixed priority order (exact
// tag, exact serial, free-text search limited to one result) and maps the
// first hit into the four-field record schema. When the registry is
// unconfigured, unreachable, or empty-handed, a local classifier guesses
// whether the scan was an asset tag or a serial number from the token's shape.
package lookup
