package batch

import "errors"

// ErrDuplicateSerial reports that the candidate's serial number already exists
// in the current batch. The batch file is left untouched.
var ErrDuplicateSerial = errors.New("duplicate serial detected in this batch")

// ErrNoBatch reports that no batch file exists, so there is nothing to export.
var ErrNoBatch = errors.New("no data to finalize")
