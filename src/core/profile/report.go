package profile

import (
	"fmt"
	"strings"
)

const previewColumns = 5

// Text renders the short report shown when a dataset has been loaded
func (s *Summary) Text() string {
	if s == nil {
		return "Error: Invalid summary format"
	}

	md := s.Metadata
	report := []string{
		fmt.Sprintf("📊 Dataset Summary (%d rows × %d columns)", md.Shape[0], md.Shape[1]),
		fmt.Sprintf("\n🔡 Columns (%d total):", len(md.Columns)),
	}

	preview := md.Columns
	more := ""
	if len(preview) > previewColumns {
		preview = preview[:previewColumns]
		more = "..."
	}
	report = append(report, strings.Join(preview, ", ")+more)

	report = append(report, "\n📝 Data Types:")
	var order []string
	counts := make(map[string]int)
	for _, name := range md.Columns {
		dtype := md.DTypes[name]
		if _, ok := counts[dtype]; !ok {
			order = append(order, dtype)
		}
		counts[dtype]++
	}
	for _, dtype := range order {
		report = append(report, fmt.Sprintf("- %s: %d columns", dtype, counts[dtype]))
	}

	return strings.Join(report, "\n")
}
