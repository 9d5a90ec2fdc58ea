// Package export finalizes scan batches into archived spreadsheet files.
//
// The Finalizer drains the batch store under its exclusive lock, renders all
// rows (header included) into a single "Scan Data" sheet with auto-fit column
// widths, and publishes the workbook with a write-then-rename so the archive
// directory never exposes partial files. Export names follow
// <YYYYMMDD>-<basename>.xlsx with an incrementing numeric suffix on collision.
package export
