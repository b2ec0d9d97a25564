package roster

import "sort"

// QualificationResult is the outcome of a qualification lookup for a set of
// services at a branch.
type QualificationResult struct {
	// HasData reports whether any qualification rows exist for the services.
	// When false the filter is fail-open: absence of data means everyone is
	// assumed qualified, not nobody.
	HasData           bool
	QualifiedStaffIDs []string
}

// FilterQualified intersects the roster with the qualified staff set and
// sorts the result descending by numeric stylist level. The sort is stable:
// ties keep roster order. With no qualification data the roster is returned
// re-sorted but unfiltered.
func FilterQualified(staff []StaffMapping, q QualificationResult) []StaffMapping {
	var candidates []StaffMapping
	if !q.HasData {
		candidates = append(candidates, staff...)
	} else {
		qualified := make(map[string]struct{}, len(q.QualifiedStaffIDs))
		for _, id := range q.QualifiedStaffIDs {
			qualified[id] = struct{}{}
		}
		for _, s := range staff {
			if _, ok := qualified[s.PhorestStaffID]; ok {
				candidates = append(candidates, s)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return ParseLevel(candidates[i].StylistLevel) > ParseLevel(candidates[j].StylistLevel)
	})
	return candidates
}

// StylistServiceSet holds the qualified-service lookup for one stylist, used
// by the stylist-first flow to cross-check service additions.
type StylistServiceSet struct {
	HasData    bool
	ServiceIDs map[string]struct{}
}

// Allows reports whether the stylist may perform the service. Fail-open: a
// stylist with no qualification rows allows every service.
func (s StylistServiceSet) Allows(serviceID string) bool {
	if !s.HasData {
		return true
	}
	_, ok := s.ServiceIDs[serviceID]
	return ok
}
