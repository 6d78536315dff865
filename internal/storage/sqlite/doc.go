// Package sqlite persists documents in a local SQLite database.
//
// The database holds whole serialized documents. Pagination is rebuilt
// from the content on load, so only the page count is stored as a readout.
package sqlite
