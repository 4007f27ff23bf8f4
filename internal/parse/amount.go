package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/granabot/granabot/internal/common"
)

var (
	// 1.234,56 — dot thousands separators with a decimal comma.
	thousandsCommaRe = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+,\d{1,2}$`)
	// 12,9 — bare decimal comma.
	decimalCommaRe = regexp.MustCompile(`^-?\d+,\d{1,2}$`)
	// Currency markers accepted anywhere around the number.
	currencyMarkerRe = regexp.MustCompile(`(?i)r?\$|rea(?:is|l)\b`)
)

// Amount parses a Brazilian-formatted numeric string into a float64.
// "1.234,56", "12,9" and "29.90" all parse to the numerically equal
// value. A non-finite or unparseable input returns ErrInvalidAmount,
// which callers must treat as recoverable user input, never a crash.
func Amount(raw string) (float64, error) {
	s := currencyMarkerRe.ReplaceAllString(raw, "")
	s = strings.Join(strings.Fields(s), "")

	switch {
	case thousandsCommaRe.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case decimalCommaRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw)
	}
	return value, nil
}
