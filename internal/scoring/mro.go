package scoring

import (
	"sort"

	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// PairSeparator joins two organism IDs into a pair key
const PairSeparator = "---"

// PairKey returns the report key of an ordered pair
func PairKey(a, b string) string {
	return a + PairSeparator + b
}

// Overlap is the resource overlap of a newcomer with an established member
type Overlap struct {
	Newcomer     string   `json:"newcomer"`
	Established  string   `json:"established"`
	Score        float64  `json:"score"`
	Shared       int      `json:"shared"`
	Required     int      `json:"required"`
	Intersection []string `json:"intersection"`
	Medium       []string `json:"medium"`
}

// ResourceOverlap computes MRO for every ordered pair of members from their
// minimal media. Score(A,B) = |media[A] ∩ media[B]| / |media[A]|, so it is
// asymmetric. members fixes the order; when empty the media keys are used in
// sorted order. An empty newcomer medium scores 0. The media are not modified.
func ResourceOverlap(members []string, media map[string]models.Medium) (map[string]Overlap, error) {
	if len(members) == 0 && len(media) == 0 {
		return nil, parameterError("either member models or a minimal media mapping is required")
	}
	if len(members) == 0 {
		for id := range media {
			members = append(members, id)
		}
		sort.Strings(members)
	}
	for _, id := range members {
		if _, ok := media[id]; !ok {
			return nil, parameterError("no minimal medium for member %s", id)
		}
	}

	out := make(map[string]Overlap, len(members)*(len(members)-1))
	for _, a := range members {
		for _, b := range members {
			if a == b {
				continue
			}
			required := media[a].IDs()
			var shared []string
			for _, id := range required {
				if media[b].Has(id) {
					shared = append(shared, id)
				}
			}
			o := Overlap{
				Newcomer:     a,
				Established:  b,
				Shared:       len(shared),
				Required:     len(required),
				Intersection: shared,
				Medium:       required,
			}
			if o.Required > 0 {
				o.Score = float64(o.Shared) / float64(o.Required)
			}
			out[PairKey(a, b)] = o
		}
	}
	return out, nil
}
