// Package ids classifies machine and job identifiers and scans free text for
// explicitly mentioned ones.
//
// An ID is an uppercase prefix (M for machines, J for jobs) followed by a
// suffix of [A-Za-z0-9_]. The suffix is either all digits, digits followed by
// an underscore and anything, or an underscore followed by something that
// contains at least one letter.
package ids

import (
	"fmt"
	"regexp"
)

const (
	// MachinePrefix starts every machine ID
	MachinePrefix = "M"
	// JobPrefix starts every job ID
	JobPrefix = "J"
)

// suffixPattern is shared by the anchored predicates and the text scanner.
// Digit-led suffixes may continue only after an underscore ("M2_123");
// underscore-led suffixes need a letter somewhere ("M_WIDGET", not "M_1").
const suffixPattern = `(?:[0-9]+(?:_[A-Za-z0-9_]*)?|_[A-Za-z0-9_]*[A-Za-z][A-Za-z0-9_]*)`

var (
	machineIDExact = regexp.MustCompile(fmt.Sprintf(`^%s%s$`, MachinePrefix, suffixPattern))
	jobIDExact     = regexp.MustCompile(fmt.Sprintf(`^%s%s$`, JobPrefix, suffixPattern))

	// \b on both sides keeps "EM1" from yielding "M1" and "M1A" from yielding anything
	machineIDScan = regexp.MustCompile(fmt.Sprintf(`\b%s%s\b`, MachinePrefix, suffixPattern))
	jobIDScan     = regexp.MustCompile(fmt.Sprintf(`\b%s%s\b`, JobPrefix, suffixPattern))
)

// IsMachineID reports whether s is a well-formed machine identifier
func IsMachineID(s string) bool {
	return machineIDExact.MatchString(s)
}

// IsJobID reports whether s is a well-formed job identifier
func IsJobID(s string) bool {
	return jobIDExact.MatchString(s)
}
