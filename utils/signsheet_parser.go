package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

var (
	rowNumberPattern    = regexp.MustCompile(`^\s*\d{1,3}\s*[.)]\s*`)
	labeledRowPattern   = regexp.MustCompile(`(?i)^(.+?)\s*[-–—]\s*\bin\b\s*[:=]?\s*([\d?]\S*)(?:\s*[-–—]\s*\bout\b\s*[:=]?\s*([\d?]\S*))?(?:\s*[-–—]\s*\bsup(?:ervisor)?\b\s*[:=]?\s*([^\s\[]+))?`)
	columnSplitPattern  = regexp.MustCompile(`\s*[|\t]\s*`)
	clockLikePattern    = regexp.MustCompile(`^(\d{1,2})\s*[:.hH]\s*(\d{2})$`)
	compactClockPattern = regexp.MustCompile(`^(\d{1,2})(\d{2})$`)
	signedPattern       = regexp.MustCompile(`(?i)\[(signed|sig|x|✓)\]|\bsigned\b|✓`)
	unsignedPattern     = regexp.MustCompile(`(?i)\[(unsigned|no sig|none)\]|\bunsigned\b`)
)

var nameCaser = cases.Title(language.English)

// ParseSignSheet extracts one PaperLogEntry per recognised row of OCR text
// from a sign-in sheet. Rows may be labelled ("3. Jane Smith - In: 07:58 -
// Out: 16:02 - Sup: AK [signed]") or column separated ("Jane Smith | 07:58
// | 16:02 | AK"). Line numbers are the 1-based positions of recognised rows.
func ParseSignSheet(ocrText string) []dto.PaperLogEntry {
	var entries []dto.PaperLogEntry

	for _, line := range strings.Split(ocrText, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}

		entry, ok := parseLabeledRow(raw)
		if !ok {
			entry, ok = parseColumnRow(raw)
		}
		if !ok {
			continue
		}

		entry.LineNumber = len(entries) + 1
		entry.RawText = raw
		entries = append(entries, entry)
	}

	return entries
}

func parseLabeledRow(raw string) (dto.PaperLogEntry, bool) {
	body := rowNumberPattern.ReplaceAllString(raw, "")
	m := labeledRowPattern.FindStringSubmatch(body)
	if m == nil {
		return dto.PaperLogEntry{}, false
	}

	name := cleanName(m[1])
	if name == "" {
		return dto.PaperLogEntry{}, false
	}

	return dto.PaperLogEntry{
		ExtractedName:    name,
		ExtractedTimeIn:  NormalizeClock(m[2]),
		ExtractedTimeOut: optionalClock(m[3]),
		Supervisor:       optionalValue(m[4]),
		SignaturePresent: detectSignature(raw),
	}, true
}

func parseColumnRow(raw string) (dto.PaperLogEntry, bool) {
	body := rowNumberPattern.ReplaceAllString(raw, "")
	cols := columnSplitPattern.Split(strings.Trim(body, "|\t "), -1)
	if len(cols) < 2 {
		return dto.PaperLogEntry{}, false
	}

	// header rows and free text have no clock in the second column
	timeIn := NormalizeClock(cols[1])
	if _, err := ParseClock("", timeIn); err != nil {
		return dto.PaperLogEntry{}, false
	}

	name := cleanName(cols[0])
	if name == "" {
		return dto.PaperLogEntry{}, false
	}

	entry := dto.PaperLogEntry{
		ExtractedName:    name,
		ExtractedTimeIn:  timeIn,
		SignaturePresent: detectSignature(raw),
	}
	if len(cols) > 2 {
		entry.ExtractedTimeOut = optionalClock(cols[2])
	}
	if len(cols) > 3 {
		entry.Supervisor = optionalValue(cols[3])
	}
	return entry, true
}

// NormalizeClock rewrites common handwritten clock forms ("7.58", "7h58",
// "0758") as "HH:MM". Values it cannot read are returned trimmed but
// otherwise untouched.
func NormalizeClock(value string) string {
	v := strings.TrimSpace(value)

	m := clockLikePattern.FindStringSubmatch(v)
	if m == nil {
		m = compactClockPattern.FindStringSubmatch(v)
	}
	if m == nil {
		return v
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return v
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func cleanName(s string) string {
	name := strings.Join(strings.Fields(strings.Trim(s, " -–—:|")), " ")
	if name == "" {
		return ""
	}
	return nameCaser.String(strings.ToLower(name))
}

func optionalClock(s string) *string {
	v := optionalValue(s)
	if v == nil {
		return nil
	}
	normalized := NormalizeClock(*v)
	return &normalized
}

func optionalValue(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" || strings.Trim(v, "?-_") == "" {
		return nil
	}
	return &v
}

func detectSignature(raw string) *bool {
	var present bool
	switch {
	case unsignedPattern.MatchString(raw):
		present = false
	case signedPattern.MatchString(raw):
		present = true
	default:
		return nil
	}
	return &present
}
