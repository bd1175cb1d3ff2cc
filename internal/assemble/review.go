package assemble

import (
	"strings"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

const noteSeparator = "; "

// Annotate folds the warnings gathered across the pipeline stages into a
// single review block: notes are joined in production order and the flag is
// the OR of every stage's needs-review signal. Pure, no side effects.
func Annotate(notes []string, flags ...bool) entity.Review {
	review := entity.Review{}
	for _, f := range flags {
		review.NeedsReview = review.NeedsReview || f
	}
	joined := joinNotes(notes)
	if joined != "" {
		review.ReviewNotes = &joined
	}
	return review
}

func joinNotes(notes []string) string {
	kept := make([]string, 0, len(notes))
	for _, n := range notes {
		if s := strings.TrimSpace(n); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, noteSeparator)
}
