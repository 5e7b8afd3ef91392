package quiz

import (
	"regexp"
	"strings"

	"vocab-drill-service/internal/domain"
)

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// ParseBulk turns pasted text into word entries dated today. Each line is
// either "term=synonym=meaning" or "term,synonym,meaning"; the meaning keeps
// any further separators. A two-field line is read as "term,meaning".
// Lines that do not fit either shape are skipped.
func ParseBulk(text, today string) []domain.WordEntry {
	out := make([]domain.WordEntry, 0)
	for _, line := range lineBreaks.Split(strings.TrimSpace(text), -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sep := ","
		if strings.Contains(line, "=") {
			sep = "="
		}
		parts := strings.Split(line, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var entry domain.WordEntry
		switch {
		case len(parts) >= 3:
			entry = domain.WordEntry{
				Primary:   parts[0],
				Secondary: parts[1],
				Meaning:   strings.Join(parts[2:], sep),
			}
		case len(parts) == 2:
			entry = domain.WordEntry{Primary: parts[0], Meaning: parts[1]}
		default:
			continue
		}
		if entry.Primary == "" || entry.Meaning == "" {
			continue
		}
		entry.AcquiredOn = today
		out = append(out, entry)
	}
	return out
}
