package iloveemas

import (
	"html"
	"regexp"
	"strings"

	"hargaemas/internal/label"
	"hargaemas/internal/source"
)

// sectionSpan bounds a slice when no later id follows the section marker
const sectionSpan = 15000

var (
	rowPattern   = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	labelPattern = regexp.MustCompile(`(?is)class="[^"]*` + labelClass + `[^"]*"[^>]*>(.*?)</td>`)
	valuePattern = regexp.MustCompile(`(?is)class="[^"]*` + valueClass + `[^"]*"[^>]*>(.*?)</td>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// sliceSection reads rows from the raw markup that starts at id="<id>" and
// ends at the next id attribute, so rows of the neighbouring tab never bleed in.
func sliceSection(raw, id string) ([]label.Row, bool) {
	marker := `id="` + id + `"`
	start := strings.Index(raw, marker)
	if start < 0 {
		return nil, false
	}

	after := start + len(marker)
	end := after + sectionSpan
	if next := strings.Index(raw[after:], ` id="`); next >= 0 {
		end = after + next
	}
	if end > len(raw) {
		end = len(raw)
	}

	rows := []label.Row{}
	for _, m := range rowPattern.FindAllStringSubmatch(raw[start:end], -1) {
		row := m[1]
		if strings.Contains(row, `"`+headerClass+`"`) {
			continue
		}

		labelM := labelPattern.FindStringSubmatch(row)
		valueM := valuePattern.FindStringSubmatch(row)
		if labelM == nil || valueM == nil {
			continue
		}

		name := strings.TrimSpace(stripTags(labelM[1]))
		price, ok := source.ParsePrice(stripTags(valueM[1]))
		if name == "" || !ok {
			continue
		}

		rows = append(rows, label.Row{Label: name, Price: price})
	}
	return rows, true
}

func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
