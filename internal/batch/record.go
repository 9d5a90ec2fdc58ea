package batch

import "strings"

// MissingTagSentinel is written in place of an absent Temple Tag at append time.
const MissingTagSentinel = "N/A"

// FieldCount is the fixed number of columns in a batch row.
const FieldCount = 4

// Record is one scanned equipment row. Field order matches the batch file
// columns: Equipment Type, Item Description, Serial Number, Temple Tag.
type Record struct {
	EquipmentType   string
	ItemDescription string
	SerialNumber    string
	TempleTag       string
}

// Row renders the record as a batch file row in fixed column order.
func (r Record) Row() []string {
	return []string{r.EquipmentType, r.ItemDescription, r.SerialNumber, r.TempleTag}
}

// FromRow builds a Record from a batch file row. Short rows yield empty fields.
func FromRow(row []string) Record {
	var rec Record
	if len(row) > 0 {
		rec.EquipmentType = row[0]
	}
	if len(row) > 1 {
		rec.ItemDescription = row[1]
	}
	if len(row) > 2 {
		rec.SerialNumber = row[2]
	}
	if len(row) > 3 {
		rec.TempleTag = row[3]
	}
	return rec
}

// NormalizeSerial trims the serial for comparison and storage.
func NormalizeSerial(serial string) string {
	return strings.TrimSpace(serial)
}
