package lookup

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
)

// Classify guesses whether a scanned term is an asset tag or a serial number.
// Operators scan either barcode and the input carries no marker, so absent
// registry data the shape of the token decides: a configured prefix or a short
// all-digit run reads as a tag and fills Temple Tag; anything else is treated
// as a serial.
func (r *Resolver) Classify(term string) batch.Record {
	term = strings.TrimSpace(term)
	rec := batch.Record{EquipmentType: r.fallbackCategory}

	if r.isTagLike(term) {
		rec.TempleTag = term
	} else {
		rec.SerialNumber = term
	}
	return rec
}

func (r *Resolver) isTagLike(term string) bool {
	if term == "" {
		return false
	}
	if r.tagPrefix != "" && strings.HasPrefix(strings.ToUpper(term), r.tagPrefix) {
		return true
	}
	return allDigits(term) && len(term) < r.tagMaxDigits
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeLabel fixes shouty registry labels ("LAPTOP" -> "Laptop") while
// leaving mixed-case names untouched.
func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	hasLetter := false
	hasLower := false
	for _, r := range label {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				hasLower = true
				break
			}
		}
	}
	if !hasLetter || hasLower {
		return label
	}
	return cases.Title(language.Und).String(strings.ToLower(label))
}
