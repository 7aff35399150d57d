package signals

import (
	"regexp"
	"strconv"
	"strings"
)

// Specification keys returned by ExtractSpecifications.
const (
	SpecProcessor   = "processor"
	SpecMemory      = "memory"
	SpecStorage     = "storage"
	SpecScreen      = "screen"
	SpecModelNumber = "model_number"
)

var (
	appleChipPattern   = regexp.MustCompile(`\b(M[1-4])(?:\s+(Pro|Max|Ultra))?\b`)
	intelChipPattern   = regexp.MustCompile(`(?i)\b(?:intel\s+)?core\s+(i[3579])(?:[-\s](\d{4,5}[a-z]{0,2}))?\b`)
	ryzenChipPattern   = regexp.MustCompile(`(?i)\bryzen\s+([3579])(?:\s+(\d{4}[a-z]{0,2}))?\b`)
	capacityPattern    = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(GB|TB)\b(?:\s*(RAM|memory|unified memory|SSD|HDD|storage|flash))?`)
	screenPattern      = regexp.MustCompile(`(?i)\b(\d{2}(?:\.\d)?)\s*(?:-?\s*inch(?:es)?\b|"|”|''|in\b)`)
	modelNumberPattern = regexp.MustCompile(`\b([A-Z]{1,3}-?[A-Z]?\d{3,5}[A-Z]{0,2})\b`)
)

// ExtractChip returns a normalized processor name ("M1 Pro", "Core i7",
// "Ryzen 7") or "".
func ExtractChip(text string) string {
	if m := appleChipPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1] + " " + m[2])
	}
	if m := intelChipPattern.FindStringSubmatch(text); m != nil {
		chip := "Core " + strings.ToLower(m[1])
		if m[2] != "" {
			chip += "-" + strings.ToUpper(m[2])
		}
		return chip
	}
	if m := ryzenChipPattern.FindStringSubmatch(text); m != nil {
		chip := "Ryzen " + m[1]
		if m[2] != "" {
			chip += " " + strings.ToUpper(m[2])
		}
		return chip
	}
	return ""
}

// ExtractScreenSize returns a screen size like "14-inch" or "".
func ExtractScreenSize(text string) string {
	m := screenPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil || size < 5 || size > 99 {
		return ""
	}
	return m[1] + "-inch"
}

// ExtractCapacities splits GB/TB figures into memory and storage. An explicit
// RAM/SSD qualifier decides; otherwise TB and >= 128GB count as storage.
func ExtractCapacities(text string) (memory, storage string) {
	for _, m := range capacityPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			continue
		}
		unit := strings.ToUpper(m[2])
		value := m[1] + unit
		qualifier := strings.ToLower(m[3])

		isStorage := false
		switch {
		case qualifier == "ram" || strings.HasSuffix(qualifier, "memory"):
			isStorage = false
		case qualifier != "":
			isStorage = true
		case unit == "TB" || n >= 128:
			isStorage = true
		}

		if isStorage {
			if storage == "" {
				storage = value
			}
		} else if memory == "" {
			memory = value
		}
	}
	return memory, storage
}

// ExtractModelNumber returns the first part-number-looking token such as
// "A2338" or "SM-G991B".
func ExtractModelNumber(text string) string {
	if m := modelNumberPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ExtractSpecifications collects the technical details found in text.
func ExtractSpecifications(text string) map[string]string {
	specs := make(map[string]string)
	if chip := ExtractChip(text); chip != "" {
		specs[SpecProcessor] = chip
	}
	memory, storage := ExtractCapacities(text)
	if memory != "" {
		specs[SpecMemory] = memory
	}
	if storage != "" {
		specs[SpecStorage] = storage
	}
	if screen := ExtractScreenSize(text); screen != "" {
		specs[SpecScreen] = screen
	}
	if mn := ExtractModelNumber(text); mn != "" {
		specs[SpecModelNumber] = mn
	}
	return specs
}
