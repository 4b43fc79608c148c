package organizer

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"shelf/internal/config"
)

// FallbackCategory receives every extension no rule claims.
const FallbackCategory = "Others"

// Rule pairs a category folder with the extensions it claims.
type Rule struct {
	Category   string
	Extensions map[string]struct{}
}

// Has reports whether the rule claims ext. ext must already be normalized.
func (r Rule) Has(ext string) bool {
	_, ok := r.Extensions[ext]
	return ok
}

// SortedExtensions returns the claimed extensions in lexical order.
func (r Rule) SortedExtensions() []string {
	out := make([]string, 0, len(r.Extensions))
	for ext := range r.Extensions {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

// RuleTable is an ordered rule list. Earlier rules win when two claim the
// same extension.
type RuleTable []Rule

var defaultRules = []config.CustomRule{
	{Category: "Images", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "heic"}},
	{Category: "Videos", Extensions: []string{"mp4", "mkv", "mov", "avi", "webm"}},
	{Category: "Audio", Extensions: []string{"mp3", "wav", "flac", "aac", "m4a"}},
	{Category: "Documents", Extensions: []string{"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "rtf"}},
	{Category: "Archives", Extensions: []string{"zip", "rar", "7z", "tar", "gz", "bz2"}},
	{Category: "Code", Extensions: []string{"js", "jsx", "ts", "tsx", "py", "java", "c", "cpp", "html", "css", "json"}},
	{Category: "Installers", Extensions: []string{"exe", "msi", "deb", "rpm"}},
	{Category: FallbackCategory, Extensions: nil},
}

// BuildRules merges custom rules over the built-in table. Custom rules come
// first in the order given; a default category survives only when no custom
// rule uses its name, in which case the custom list replaces it outright.
// When two custom rules share a name the first one wins.
func BuildRules(custom []config.CustomRule) RuleTable {
	table := make(RuleTable, 0, len(custom)+len(defaultRules))
	seen := make(map[string]struct{}, len(custom)+len(defaultRules))

	add := func(rule config.CustomRule) {
		name := strings.TrimSpace(rule.Category)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		exts := make(map[string]struct{}, len(rule.Extensions))
		for _, raw := range rule.Extensions {
			if ext := NormalizeExt(raw); ext != "" {
				exts[ext] = struct{}{}
			}
		}
		table = append(table, Rule{Category: name, Extensions: exts})
	}

	for _, rule := range custom {
		add(rule)
	}
	for _, rule := range defaultRules {
		add(rule)
	}
	return table
}

// DefaultRules returns the built-in table with no custom overrides.
func DefaultRules() RuleTable {
	return BuildRules(nil)
}

// NormalizeExt trims whitespace, strips leading dots, and lowercases.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

// Classify returns the category of the first rule claiming ext, or
// FallbackCategory. ext is normalized before matching.
func (t RuleTable) Classify(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "" {
		return FallbackCategory
	}
	for _, rule := range t {
		if rule.Has(ext) {
			return rule.Category
		}
	}
	return FallbackCategory
}

// Categories lists the rule names in precedence order.
func (t RuleTable) Categories() []string {
	names := make([]string, len(t))
	for i, rule := range t {
		names[i] = rule.Category
	}
	return names
}

// HasCategory reports whether name matches a rule category. Names are
// compared in Unicode NFC so a folder created on a filesystem that stores
// decomposed names still matches its rule.
func (t RuleTable) HasCategory(name string) bool {
	want := norm.NFC.String(name)
	for _, rule := range t {
		if norm.NFC.String(rule.Category) == want {
			return true
		}
	}
	return false
}

// ExtensionOf returns the suffix of a file name without its dot: the text
// after the last dot, provided that dot is neither the first nor the last
// character. "archive.tar.gz" yields "gz"; ".bashrc" and "notes." yield "".
func ExtensionOf(name string) string {
	suffix := suffixOf(name)
	if suffix == "" {
		return ""
	}
	return suffix[1:]
}

// suffixOf returns the dotted suffix of name, or "" when it has none.
func suffixOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// splitName splits a file name into stem and dotted suffix.
func splitName(name string) (stem, suffix string) {
	suffix = suffixOf(name)
	return strings.TrimSuffix(name, suffix), suffix
}
