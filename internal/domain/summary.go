package domain

import "sort"

// BuildStudentSummary rolls up classified records per student id. Records
// without a student id group together under the empty string rather than
// being discarded. Output is sorted ascending by student id; empty input
// yields an empty (non-nil) slice.
func BuildStudentSummary(log []ClassifiedRecord) []StudentSummary {
	byStudent := make(map[string]*StudentSummary)
	for _, rec := range log {
		s, ok := byStudent[rec.StudentID]
		if !ok {
			s = &StudentSummary{StudentID: rec.StudentID}
			byStudent[rec.StudentID] = s
		}
		s.TotalVerifiedHours += rec.VerifiedHours
		if rec.Status == StatusVerified {
			s.VerifiedVisits++
		}
		if rec.RecordedAt != nil && (s.LastRecordedAt == nil || rec.RecordedAt.After(*s.LastRecordedAt)) {
			t := *rec.RecordedAt
			s.LastRecordedAt = &t
		}
	}

	out := make([]StudentSummary, 0, len(byStudent))
	for _, s := range byStudent {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// BuildSiteSummary rolls up classified records per site name, with the same
// empty-string bucket rule for missing names. AvgHoursPerVisit is 0 when a
// site has no verified visits. Output is sorted ascending by site name.
func BuildSiteSummary(log []ClassifiedRecord) []SiteSummary {
	type siteAgg struct {
		summary  SiteSummary
		students map[string]struct{}
	}

	bySite := make(map[string]*siteAgg)
	for _, rec := range log {
		a, ok := bySite[rec.SiteName]
		if !ok {
			a = &siteAgg{
				summary:  SiteSummary{SiteName: rec.SiteName},
				students: make(map[string]struct{}),
			}
			bySite[rec.SiteName] = a
		}
		a.summary.TotalVerifiedHours += rec.VerifiedHours
		if rec.Status == StatusVerified {
			a.summary.VerifiedVisits++
		}
		a.students[rec.StudentID] = struct{}{}
	}

	out := make([]SiteSummary, 0, len(bySite))
	for _, a := range bySite {
		a.summary.UniqueStudents = len(a.students)
		if a.summary.VerifiedVisits > 0 {
			a.summary.AvgHoursPerVisit = a.summary.TotalVerifiedHours / float64(a.summary.VerifiedVisits)
		}
		out = append(out, a.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteName < out[j].SiteName })
	return out
}

// BuildReviewSummary lists students with at least one record in the Review
// tier, sorted by review count descending then student id for a total order.
func BuildReviewSummary(log []ClassifiedRecord) []ReviewSummary {
	byStudent := make(map[string]*ReviewSummary)
	for _, rec := range log {
		s, ok := byStudent[rec.StudentID]
		if !ok {
			s = &ReviewSummary{StudentID: rec.StudentID}
			byStudent[rec.StudentID] = s
		}
		s.TotalEntries++
		if rec.Status == StatusReview {
			s.ReviewCount++
		}
	}

	out := make([]ReviewSummary, 0, len(byStudent))
	for _, s := range byStudent {
		if s.ReviewCount > 0 {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}
