package attest

import "strings"

// reasonEntry pairs a lowercase ISO-639 language tag with the
// explanation returned when attestation fails.
type reasonEntry struct {
	lang string
	text string
}

// reasons is the process-wide reason-string table. The first entry is
// the default language. Read-only after init, safe to share across
// goroutines.
var reasons = []reasonEntry{
	{"en", "Attestation: non-matching file measurement(s) or invalid platform quote signature"},
	{"mn", "Attestation: Файлуудын хэмжилт зөрсөн эсвэл буруу TPM Quote гарын үсэг"},
	{"de", "Attestation: Falsche Datei Messung/en oder TPM Quote Unterschrift ist ungültig"},
}

// LookupReason selects the reason string best matching the caller's
// language preference. The input is a comma-separated list of language
// tags in preference order, Accept-Language style without quality
// weights. The first tag that matches any table entry wins; with no
// match (including empty input) the default entry is returned. It
// never fails.
func LookupReason(preferredLanguages string) (text, lang string) {
	rest := preferredLanguages
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		var token string
		if i := strings.IndexByte(rest, ','); i >= 0 {
			token, rest = rest[:i], rest[i+1:]
		} else {
			token, rest = rest, ""
		}
		token = strings.TrimRight(token, " \t")
		if token == "" {
			// empty or whitespace-only token, keep scanning
			continue
		}
		for _, entry := range reasons {
			if entry.lang == token {
				return entry.text, entry.lang
			}
		}
	}
	return reasons[0].text, reasons[0].lang
}

// ReasonLanguages returns the language tags with a registered reason
// string, default language first.
func ReasonLanguages() []string {
	tags := make([]string, len(reasons))
	for i, entry := range reasons {
		tags[i] = entry.lang
	}
	return tags
}

// ReasonString is the per-connection form of LookupReason, part of the
// tracker contract consumed by the protocol driver.
func (s *State) ReasonString(preferredLanguages string) (text, lang string) {
	return LookupReason(preferredLanguages)
}
