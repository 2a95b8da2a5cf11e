package classify

// Classify assigns exactly one outcome to a post.
//
// Comments are partitioned by admin-likeness first. When at least one admin
// comment exists, target matching runs over admin comments only; otherwise it
// runs over all comments. "First" selections follow original comment order.
func Classify(post PostRecord, roster Roster, targets Targets) Decision {
	var adminComments []Comment
	for _, c := range post.Comments {
		if IsAdminLike(c, roster) {
			adminComments = append(adminComments, c)
		}
	}

	if len(adminComments) > 0 {
		adminMatches := matching(adminComments, targets)
		if len(adminMatches) > 0 {
			rep := preferMarker(adminMatches)
			return Decision{
				Outcome:        OutcomeAccepted,
				Representative: rep,
				Matches:        adminMatches,
				AdminFound:     true,
				TargetFound:    true,
			}
		}
		rep := preferMarker(adminComments)
		return Decision{
			Outcome:        OutcomeRejectedWithAdmin,
			Representative: rep,
			AdminFound:     true,
		}
	}

	allMatches := matching(post.Comments, targets)
	if len(allMatches) > 0 {
		rep := allMatches[0]
		return Decision{
			Outcome:        OutcomeSavedNoAdmin,
			Representative: &rep,
			Matches:        allMatches,
			TargetFound:    true,
		}
	}
	return Decision{Outcome: OutcomeRejectedNoAdmin}
}

func matching(comments []Comment, targets Targets) []Comment {
	var out []Comment
	for _, c := range comments {
		if targets.Match(c.Text) {
			out = append(out, c)
		}
	}
	return out
}

// preferMarker picks the first comment carrying the inline admin marker, or
// the first comment when none does.
func preferMarker(comments []Comment) *Comment {
	if len(comments) == 0 {
		return nil
	}
	for i := range comments {
		if HasAdminMarker(comments[i].Text) {
			c := comments[i]
			return &c
		}
	}
	c := comments[0]
	return &c
}
