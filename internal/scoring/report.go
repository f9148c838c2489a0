package scoring

import "sort"

// Report collects the scores of one run. Maps are keyed by organism ID or by
// PairKey; nil profiles are undefined scores.
type Report struct {
	RawContent bool                        `json:"raw_content,omitempty"`
	MRO        map[string]Overlap          `json:"mro,omitempty"`
	MIP        *MIPResult                  `json:"mip,omitempty"`
	MP         map[string]MetaboliteSet    `json:"mp,omitempty"`
	MU         map[string]*UptakeProfile   `json:"mu,omitempty"`
	SC         map[string]*CouplingProfile `json:"sc,omitempty"`
	Smetana    []Interaction               `json:"smetana,omitempty"`
	GrowthDiff map[string]float64          `json:"growth_diff,omitempty"`
}

// AsMap renders the report as a nested mapping keyed by metric name and then
// by organism or pair identifier. Values are limited to map[string]any, []any,
// float64, string and nil so the result converts directly to a protobuf Struct.
func (r *Report) AsMap() map[string]any {
	out := make(map[string]any)
	if r == nil {
		return out
	}

	if r.MRO != nil {
		mro := make(map[string]any, len(r.MRO))
		for key, o := range r.MRO {
			if r.RawContent {
				mro[key] = map[string]any{
					"intersection": stringList(o.Intersection),
					"medium":       stringList(o.Medium),
				}
				continue
			}
			mro[key] = map[string]any{
				"score":    o.Score,
				"shared":   float64(o.Shared),
				"required": float64(o.Required),
			}
		}
		out["mro"] = mro
	}

	if r.MIP != nil {
		var removed any
		if len(r.MIP.Removed) > 0 {
			removed = stringList(r.MIP.Removed)
		}
		out["mip"] = map[string]any{
			"score":   float64(r.MIP.Score),
			"removed": removed,
		}
	}

	if r.MP != nil {
		mp := make(map[string]any, len(r.MP))
		for id, set := range r.MP {
			mp[id] = stringList(set.Sorted())
		}
		out["mp"] = mp
	}

	if r.MU != nil {
		mu := make(map[string]any, len(r.MU))
		for id, profile := range r.MU {
			if profile == nil {
				mu[id] = nil
				continue
			}
			mu[id] = floatMap(profile.Frequencies)
		}
		out["mu"] = mu
	}

	if r.SC != nil {
		sc := make(map[string]any, len(r.SC))
		for id, profile := range r.SC {
			if profile == nil {
				sc[id] = nil
				continue
			}
			sc[id] = floatMap(profile.Donors)
		}
		out["sc"] = sc
	}

	if r.Smetana != nil {
		smetana := make(map[string]any, len(r.Smetana))
		for _, i := range r.Smetana {
			smetana[i.Key()] = i.Score
		}
		out["smetana"] = smetana
	}

	if r.GrowthDiff != nil {
		out["growth_diff"] = floatMap(r.GrowthDiff)
	}
	return out
}

// SmetanaTotal sums the SMETANA scores of every direction
func (r *Report) SmetanaTotal() float64 {
	total := 0.0
	for _, i := range r.Smetana {
		total += i.Score
	}
	return total
}

// SortedSmetana returns the interactions ordered by descending score, then key
func (r *Report) SortedSmetana() []Interaction {
	out := append([]Interaction(nil), r.Smetana...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

func stringList(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func floatMap(in map[string]float64) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
