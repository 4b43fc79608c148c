package organizer

import (
	"path/filepath"
	"testing"
	"time"

	"shelf/internal/testsupport"
)

func TestPlanDestinationLayouts(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "holiday.jpg")
	testsupport.WriteFileAt(t, path, "jpg", time.Date(2023, time.March, 18, 12, 0, 0, 0, time.Local))
	rules := DefaultRules()

	cases := []struct {
		layout Layout
		want   string
	}{
		{LayoutTypeThenDate, filepath.Join(root, "Images", "2023", "Mar")},
		{LayoutDateThenType, filepath.Join(root, "2023", "Mar", "Images")},
		{LayoutTypeOnly, filepath.Join(root, "Images")},
	}
	for _, tc := range cases {
		got, err := PlanDestination(path, root, tc.layout, rules)
		if err != nil {
			t.Fatalf("PlanDestination(%s): %v", tc.layout, err)
		}
		if got != tc.want {
			t.Fatalf("PlanDestination(%s) = %q, want %q", tc.layout, got, tc.want)
		}
	}
}

func TestPlanDestinationUnknownExtensionGoesToOthers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "disk.iso")
	testsupport.WriteFileAt(t, path, "iso", time.Date(2021, time.December, 1, 8, 0, 0, 0, time.Local))

	got, err := PlanDestination(path, root, LayoutTypeThenDate, DefaultRules())
	if err != nil {
		t.Fatalf("PlanDestination: %v", err)
	}
	if want := filepath.Join(root, "Others", "2021", "Dec"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPlanDestinationMissingFile(t *testing.T) {
	root := t.TempDir()
	if _, err := PlanDestination(filepath.Join(root, "gone.txt"), root, LayoutTypeOnly, DefaultRules()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseLayout(t *testing.T) {
	cases := map[string]Layout{
		"type_date":  LayoutTypeThenDate,
		"DATE_TYPE":  LayoutDateThenType,
		"type":       LayoutTypeOnly,
		"by_size":    LayoutTypeOnly,
		"":           LayoutTypeOnly,
		" type_date": LayoutTypeThenDate,
	}
	for in, want := range cases {
		if got := ParseLayout(in); got != want {
			t.Fatalf("ParseLayout(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMonthAbbrev(t *testing.T) {
	want := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for i, w := range want {
		if got := monthAbbrev(time.Month(i + 1)); got != w {
			t.Fatalf("monthAbbrev(%d) = %q, want %q", i+1, got, w)
		}
	}
}
