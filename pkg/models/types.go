package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Metabolite is a chemical species of a flux model
type Metabolite struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Compartment string `yaml:"compartment,omitempty" json:"compartment,omitempty"`
}

// Extracellular reports whether the metabolite lives in the shared environment.
// Compartments "e", "e0", "e1" ... are extracellular; without a compartment the
// ID suffix (_e, _e0) decides.
func (m Metabolite) Extracellular() bool {
	if m.Compartment != "" {
		return isExtracellularCompartment(m.Compartment)
	}
	idx := strings.LastIndex(m.ID, "_")
	if idx < 0 {
		return false
	}
	return isExtracellularCompartment(m.ID[idx+1:])
}

func isExtracellularCompartment(c string) bool {
	if c == "" || c[0] != 'e' {
		return false
	}
	for _, r := range c[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Reaction is a single flux variable with its stoichiometry and bounds
type Reaction struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name,omitempty" json:"name,omitempty"`
	Metabolites map[string]float64 `yaml:"metabolites" json:"metabolites"` // metabolite ID -> coefficient
	LowerBound  float64            `yaml:"lower_bound" json:"lower_bound"`
	UpperBound  float64            `yaml:"upper_bound" json:"upper_bound"`
	Biomass     bool               `yaml:"biomass,omitempty" json:"biomass,omitempty"`
	Member      string             `yaml:"member,omitempty" json:"member,omitempty"` // owning organism inside a community
}

// IsBiomass reports whether the reaction represents growth.
// Reactions flagged explicitly or named bio* (bio1, bio2, ...) qualify.
func (r *Reaction) IsBiomass() bool {
	return r.Biomass || strings.HasPrefix(strings.ToLower(r.ID), "bio")
}

// Model is a flux-constraint system stored as arenas of metabolites and reactions
// with ID lookups. A community model additionally lists its members and tags
// every member-owned reaction with Reaction.Member.
//
// Index must be called after building a Model literal or decoding one; NewModel
// and ParseModel do it already.
type Model struct {
	ID          string             `yaml:"id" json:"id"`
	Metabolites []Metabolite       `yaml:"metabolites" json:"metabolites"`
	Reactions   []Reaction         `yaml:"reactions" json:"reactions"`
	Objective   map[string]float64 `yaml:"objective" json:"objective"` // reaction ID -> coefficient, maximized
	Members     []string           `yaml:"members,omitempty" json:"members,omitempty"`

	metIndex  map[string]int
	rxnIndex  map[string]int
	exchanges []int
}

// NewModel builds and indexes a model
func NewModel(id string, metabolites []Metabolite, reactions []Reaction, objective map[string]float64) (*Model, error) {
	m := &Model{
		ID:          id,
		Metabolites: metabolites,
		Reactions:   reactions,
		Objective:   objective,
	}
	if err := m.Index(); err != nil {
		return nil, err
	}
	return m, nil
}

// Index validates the model and (re)builds its lookup tables
func (m *Model) Index() error {
	if m.ID == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	metIndex := make(map[string]int, len(m.Metabolites))
	for i, met := range m.Metabolites {
		if met.ID == "" {
			return fmt.Errorf("model %s: metabolite %d has an empty id", m.ID, i)
		}
		if _, dup := metIndex[met.ID]; dup {
			return fmt.Errorf("model %s: duplicate metabolite id: %s", m.ID, met.ID)
		}
		metIndex[met.ID] = i
	}

	rxnIndex := make(map[string]int, len(m.Reactions))
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		if rxn.ID == "" {
			return fmt.Errorf("model %s: reaction %d has an empty id", m.ID, i)
		}
		if _, dup := rxnIndex[rxn.ID]; dup {
			return fmt.Errorf("model %s: duplicate reaction id: %s", m.ID, rxn.ID)
		}
		if math.IsNaN(rxn.LowerBound) || math.IsNaN(rxn.UpperBound) {
			return fmt.Errorf("model %s: reaction %s has NaN bounds", m.ID, rxn.ID)
		}
		if rxn.LowerBound > rxn.UpperBound {
			return fmt.Errorf("model %s: reaction %s lower bound %g exceeds upper bound %g",
				m.ID, rxn.ID, rxn.LowerBound, rxn.UpperBound)
		}
		for metID := range rxn.Metabolites {
			if _, ok := metIndex[metID]; !ok {
				return fmt.Errorf("model %s: reaction %s references unknown metabolite %s", m.ID, rxn.ID, metID)
			}
		}
		rxnIndex[rxn.ID] = i
	}

	for rxnID := range m.Objective {
		if _, ok := rxnIndex[rxnID]; !ok {
			return fmt.Errorf("model %s: objective references unknown reaction %s", m.ID, rxnID)
		}
	}

	members := make(map[string]bool, len(m.Members))
	for _, member := range m.Members {
		if member == "" {
			return fmt.Errorf("model %s: member id cannot be empty", m.ID)
		}
		if members[member] {
			return fmt.Errorf("model %s: duplicate member id: %s", m.ID, member)
		}
		members[member] = true
	}
	for i := range m.Reactions {
		owner := m.Reactions[i].Member
		if owner != "" && !members[owner] {
			return fmt.Errorf("model %s: reaction %s is owned by unknown member %s", m.ID, m.Reactions[i].ID, owner)
		}
	}

	m.metIndex = metIndex
	m.rxnIndex = rxnIndex
	m.exchanges = m.exchanges[:0]
	for i := range m.Reactions {
		if m.isExchange(&m.Reactions[i]) {
			m.exchanges = append(m.exchanges, i)
		}
	}
	return nil
}

// isExchange reports single-metabolite boundary reactions. Biomass reactions
// and reactions weighted in the objective are never exchanges, even when they
// drain one extracellular metabolite.
func (m *Model) isExchange(rxn *Reaction) bool {
	if len(rxn.Metabolites) != 1 || rxn.IsBiomass() {
		return false
	}
	if m.Objective[rxn.ID] != 0 {
		return false
	}
	if strings.HasPrefix(rxn.ID, "EX_") {
		return true
	}
	for metID := range rxn.Metabolites {
		return m.Metabolites[m.metIndex[metID]].Extracellular()
	}
	return false
}

// Reaction returns the reaction with the given ID
func (m *Model) Reaction(id string) (*Reaction, bool) {
	idx, ok := m.rxnIndex[id]
	if !ok {
		return nil, false
	}
	return &m.Reactions[idx], true
}

// ReactionIndex returns the arena position of a reaction
func (m *Model) ReactionIndex(id string) (int, bool) {
	idx, ok := m.rxnIndex[id]
	return idx, ok
}

// Metabolite returns the metabolite with the given ID
func (m *Model) Metabolite(id string) (*Metabolite, bool) {
	idx, ok := m.metIndex[id]
	if !ok {
		return nil, false
	}
	return &m.Metabolites[idx], true
}

// ExchangeReactions returns the reactions connecting the model to its environment,
// in declaration order
func (m *Model) ExchangeReactions() []*Reaction {
	out := make([]*Reaction, 0, len(m.exchanges))
	for _, idx := range m.exchanges {
		out = append(out, &m.Reactions[idx])
	}
	return out
}

// IsExchange reports whether the reaction ID names an exchange reaction
func (m *Model) IsExchange(id string) bool {
	idx, ok := m.rxnIndex[id]
	if !ok {
		return false
	}
	for _, ex := range m.exchanges {
		if ex == idx {
			return true
		}
	}
	return false
}

// ExchangeMetabolite returns the single metabolite exchanged by rxn
func ExchangeMetabolite(rxn *Reaction) string {
	for metID := range rxn.Metabolites {
		return metID
	}
	return ""
}

// MetaboliteIDs returns every metabolite ID in declaration order
func (m *Model) MetaboliteIDs() []string {
	ids := make([]string, len(m.Metabolites))
	for i, met := range m.Metabolites {
		ids[i] = met.ID
	}
	return ids
}

// IsCommunity reports whether the model merges several members
func (m *Model) IsCommunity() bool {
	return len(m.Members) > 0
}

// BiomassReactions returns the biomass reactions owned by member.
// An empty member selects every biomass reaction of the model.
func (m *Model) BiomassReactions(member string) []*Reaction {
	var out []*Reaction
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		if !rxn.IsBiomass() {
			continue
		}
		if member != "" && rxn.Member != member {
			continue
		}
		out = append(out, rxn)
	}
	return out
}

// Clone returns an independent, indexed deep copy of the model
func (m *Model) Clone() *Model {
	cloned := &Model{
		ID:          m.ID,
		Metabolites: make([]Metabolite, len(m.Metabolites)),
		Reactions:   make([]Reaction, len(m.Reactions)),
		Objective:   make(map[string]float64, len(m.Objective)),
		Members:     append([]string(nil), m.Members...),
	}
	copy(cloned.Metabolites, m.Metabolites)
	for i, rxn := range m.Reactions {
		rxn.Metabolites = copyCoefficients(rxn.Metabolites)
		cloned.Reactions[i] = rxn
	}
	for k, v := range m.Objective {
		cloned.Objective[k] = v
	}
	if err := cloned.Index(); err != nil {
		// The source was indexed successfully, so the copy is valid too.
		panic(fmt.Sprintf("models: clone of %s failed to index: %v", m.ID, err))
	}
	return cloned
}

func copyCoefficients(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Medium maps exchange reaction IDs to their maximum uptake rate.
// It describes both an environment (available nutrients) and a minimal medium.
type Medium map[string]float64

// IDs returns the exchange IDs of the medium in sorted order
func (m Medium) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether the exchange is part of the medium
func (m Medium) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// Clone returns a copy of the medium; a nil medium stays nil
func (m Medium) Clone() Medium {
	if m == nil {
		return nil
	}
	out := make(Medium, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Fingerprint renders the medium deterministically for use as a cache key
func (m Medium) Fingerprint() string {
	if m == nil {
		return "complete"
	}
	var b strings.Builder
	for _, id := range m.IDs() {
		fmt.Fprintf(&b, "%s=%g;", id, m[id])
	}
	return b.String()
}
