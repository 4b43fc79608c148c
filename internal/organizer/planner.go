package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PlanDestination returns the folder path (without file name) that path
// belongs in under root. The year and month come from the file's local
// modification time.
func PlanDestination(path, root string, layout Layout, rules RuleTable) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	category := rules.Classify(ExtensionOf(filepath.Base(path)))
	return destinationFor(root, layout, category, info.ModTime()), nil
}

func destinationFor(root string, layout Layout, category string, modTime time.Time) string {
	local := modTime.Local()
	year := fmt.Sprintf("%04d", local.Year())
	month := monthAbbrev(local.Month())

	switch layout {
	case LayoutTypeThenDate:
		return filepath.Join(root, category, year, month)
	case LayoutDateThenType:
		return filepath.Join(root, year, month, category)
	default:
		return filepath.Join(root, category)
	}
}

// monthAbbrev renders Jan..Dec independent of locale.
func monthAbbrev(m time.Month) string {
	return m.String()[:3]
}
