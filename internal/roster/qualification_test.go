package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func staffFixture() []StaffMapping {
	return []StaffMapping{
		{PhorestStaffID: "st-a", UserID: "u-a", DisplayName: "Amara", StylistLevel: "Level 1"},
		{PhorestStaffID: "st-b", UserID: "u-b", DisplayName: "Bea", StylistLevel: "Level 3"},
		{PhorestStaffID: "st-c", UserID: "u-c", DisplayName: "Cal", StylistLevel: "Senior"},
		{PhorestStaffID: "st-d", UserID: "u-d", DisplayName: "Dee", StylistLevel: "Level 3"},
	}
}

func TestFilterQualifiedFailOpen(t *testing.T) {
	staff := staffFixture()
	// qualifiedStaffIDs contents must be ignored when no data exists.
	got := FilterQualified(staff, QualificationResult{HasData: false, QualifiedStaffIDs: []string{"st-a"}})

	assert.Len(t, got, len(staff))
	ids := make(map[string]bool)
	for _, m := range got {
		ids[m.PhorestStaffID] = true
	}
	for _, m := range staff {
		assert.True(t, ids[m.PhorestStaffID], "missing %s", m.PhorestStaffID)
	}
}

func TestFilterQualifiedFailOpenKeepsLevelOrder(t *testing.T) {
	staff := staffFixture()
	got := FilterQualified(staff, QualificationResult{HasData: false})

	// The fail-open list is still level-sorted: the first entry backs the
	// "highest" stylist auto-select, so raw roster order would make that
	// pick arbitrary.
	want := []string{"st-b", "st-d", "st-a", "st-c"}
	gotIDs := make([]string, len(got))
	for i, m := range got {
		gotIDs[i] = m.PhorestStaffID
	}
	assert.Equal(t, want, gotIDs)
}

func TestFilterQualifiedIntersectsAndSorts(t *testing.T) {
	staff := staffFixture()
	got := FilterQualified(staff, QualificationResult{
		HasData:           true,
		QualifiedStaffIDs: []string{"st-a", "st-b", "st-c", "st-d"},
	})

	// Level 3 stylists first, ties in roster order (Bea before Dee), then
	// Level 1, then the unparsed "Senior" level at 0.
	want := []string{"st-b", "st-d", "st-a", "st-c"}
	gotIDs := make([]string, len(got))
	for i, m := range got {
		gotIDs[i] = m.PhorestStaffID
	}
	assert.Equal(t, want, gotIDs)
}

func TestFilterQualifiedExcludesUnqualified(t *testing.T) {
	staff := staffFixture()
	got := FilterQualified(staff, QualificationResult{HasData: true, QualifiedStaffIDs: []string{"st-c"}})

	assert.Len(t, got, 1)
	assert.Equal(t, "st-c", got[0].PhorestStaffID)
}

func TestFilterQualifiedNobodyQualified(t *testing.T) {
	got := FilterQualified(staffFixture(), QualificationResult{HasData: true})
	assert.Empty(t, got)
}

func TestStylistServiceSetFailOpen(t *testing.T) {
	set := StylistServiceSet{}
	assert.True(t, set.Allows("svc-any"))

	set = StylistServiceSet{HasData: true, ServiceIDs: map[string]struct{}{"svc1": {}}}
	assert.True(t, set.Allows("svc1"))
	assert.False(t, set.Allows("svc2"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Level 3", 3},
		{"L2 Senior", 2},
		{"7", 7},
		{"Senior", 0},
		{"", 0},
		{"Level 12 Master", 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLevelSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Level 3", "level-3"},
		{"  Senior Stylist ", "senior-stylist"},
		{"L2 / Color", "l2-color"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelSlug(tt.in), "LevelSlug(%q)", tt.in)
	}
}
