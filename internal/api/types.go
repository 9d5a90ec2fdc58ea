package api

// RecordPayload is the wire shape of one batch row. The JSON keys mirror the
// CSV header labels so clients can display them verbatim.
type RecordPayload struct {
	EquipmentType   string `json:"Equipment Type"`
	ItemDescription string `json:"Item Description"`
	SerialNumber    string `json:"Serial Number"`
	TempleTag       string `json:"Temple Tag"`
}

// LookupRequest asks the daemon to resolve a scanned term.
type LookupRequest struct {
	Serial string `json:"serial"`
}

// LookupResponse carries the resolved record and whether the asset registry
// produced it (as opposed to the local classifier fallback).
type LookupResponse struct {
	RecordPayload
	FoundInSnipe bool `json:"found_in_snipe"`
}

// AddRequest appends one record to the working batch.
type AddRequest struct {
	RecordPayload
}

// AddResponse reports the append outcome. A rejected duplicate returns
// ok=false with a populated error string.
type AddResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RecentResponse lists the most recent batch rows, newest first.
type RecentResponse struct {
	Items [][]string `json:"items"`
}

// FinalizeResponse reports a completed export.
type FinalizeResponse struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename"`
}

// ResetResponse reports a cleared batch.
type ResetResponse struct {
	OK bool `json:"ok"`
}

// ExportRecord is one entry of the export history.
type ExportRecord struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	DataRows  int    `json:"data_rows"`
	CreatedAt string `json:"created_at"`
}

// ExportsResponse lists recorded exports, newest first.
type ExportsResponse struct {
	Exports []ExportRecord `json:"exports"`
}

// FilesResponse lists downloadable files in the archive directory.
type FilesResponse struct {
	Files []string `json:"files"`
}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Running      bool   `json:"running"`
	BatchFile    string `json:"batch_file"`
	DataRows     int    `json:"data_rows"`
	SnipeEnabled bool   `json:"snipe_enabled"`
	ArchiveDir   string `json:"archive_dir"`
	Version      string `json:"version,omitempty"`
}

// ErrorResponse is the uniform error envelope for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
