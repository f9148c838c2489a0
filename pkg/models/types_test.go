package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func toyModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel("ecoli",
		[]Metabolite{
			{ID: "glc_e", Compartment: "e0"},
			{ID: "glc_c", Compartment: "c0"},
			{ID: "ac_e"},
			{ID: "ac_c", Compartment: "c0"},
		},
		[]Reaction{
			{ID: "EX_glc_e", Metabolites: map[string]float64{"glc_e": -1}, LowerBound: -10, UpperBound: 1000},
			{ID: "GLCt", Metabolites: map[string]float64{"glc_e": -1, "glc_c": 1}, LowerBound: 0, UpperBound: 1000},
			{ID: "ACt", Metabolites: map[string]float64{"ac_c": -1, "ac_e": 1}, LowerBound: 0, UpperBound: 1000},
			{ID: "out_ac", Metabolites: map[string]float64{"ac_e": -1}, LowerBound: 0, UpperBound: 1000},
			{ID: "bio1", Metabolites: map[string]float64{"glc_c": -1, "ac_c": 1}, LowerBound: 0, UpperBound: 1000},
		},
		map[string]float64{"bio1": 1},
	)
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	return m
}

func TestModelIndexAndLookup(t *testing.T) {
	m := toyModel(t)

	rxn, ok := m.Reaction("GLCt")
	if !ok {
		t.Fatalf("expected GLCt to be found")
	}
	if rxn.UpperBound != 1000 {
		t.Fatalf("expected upper bound 1000, got %f", rxn.UpperBound)
	}
	if _, ok := m.Reaction("missing"); ok {
		t.Fatalf("expected missing reaction lookup to fail")
	}
	if _, ok := m.Metabolite("glc_c"); !ok {
		t.Fatalf("expected glc_c to be found")
	}
}

func TestModelExchangeDetection(t *testing.T) {
	m := toyModel(t)

	exchanges := m.ExchangeReactions()
	if len(exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(exchanges))
	}
	if exchanges[0].ID != "EX_glc_e" || exchanges[1].ID != "out_ac" {
		t.Fatalf("unexpected exchanges: %s, %s", exchanges[0].ID, exchanges[1].ID)
	}
	if !m.IsExchange("out_ac") {
		t.Fatalf("expected out_ac to be an exchange (extracellular id suffix)")
	}
	if m.IsExchange("GLCt") {
		t.Fatalf("transport reaction must not be an exchange")
	}
	if got := ExchangeMetabolite(exchanges[0]); got != "glc_e" {
		t.Fatalf("expected exchange metabolite glc_e, got %s", got)
	}
}

func TestObjectiveAndBiomassAreNotExchanges(t *testing.T) {
	m, err := NewModel("drain",
		[]Metabolite{{ID: "a_e", Compartment: "e0"}, {ID: "b_e", Compartment: "e0"}},
		[]Reaction{
			{ID: "EX_a_e", Metabolites: map[string]float64{"a_e": -1}, LowerBound: -10, UpperBound: 10},
			{ID: "bio1", Metabolites: map[string]float64{"a_e": -1}, LowerBound: 0, UpperBound: 10},
			{ID: "EX_b_e", Metabolites: map[string]float64{"b_e": -1}, LowerBound: -10, UpperBound: 10},
			{ID: "growth", Metabolites: map[string]float64{"b_e": -1}, LowerBound: 0, UpperBound: 10},
		},
		map[string]float64{"growth": 1},
	)
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	exchanges := m.ExchangeReactions()
	if len(exchanges) != 2 || exchanges[0].ID != "EX_a_e" || exchanges[1].ID != "EX_b_e" {
		ids := make([]string, 0, len(exchanges))
		for _, rxn := range exchanges {
			ids = append(ids, rxn.ID)
		}
		t.Fatalf("expected exchanges [EX_a_e EX_b_e], got %v", ids)
	}
	if m.IsExchange("bio1") || m.IsExchange("growth") {
		t.Fatalf("biomass and objective reactions must not be exchanges")
	}
}

func TestModelBiomassReactions(t *testing.T) {
	m := toyModel(t)
	bio := m.BiomassReactions("")
	if len(bio) != 1 || bio[0].ID != "bio1" {
		t.Fatalf("expected bio1 as the only biomass reaction, got %v", bio)
	}
}

func TestModelIndexErrors(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		want  string
	}{
		{
			name:  "empty id",
			model: Model{},
			want:  "model id cannot be empty",
		},
		{
			name: "duplicate reaction",
			model: Model{ID: "m", Reactions: []Reaction{
				{ID: "r1", UpperBound: 1}, {ID: "r1", UpperBound: 1},
			}},
			want: "duplicate reaction id",
		},
		{
			name: "unknown metabolite",
			model: Model{ID: "m", Reactions: []Reaction{
				{ID: "r1", Metabolites: map[string]float64{"x": 1}, UpperBound: 1},
			}},
			want: "unknown metabolite",
		},
		{
			name: "inverted bounds",
			model: Model{ID: "m", Reactions: []Reaction{
				{ID: "r1", LowerBound: 2, UpperBound: 1},
			}},
			want: "exceeds upper bound",
		},
		{
			name:  "unknown objective",
			model: Model{ID: "m", Objective: map[string]float64{"bio1": 1}},
			want:  "objective references unknown reaction",
		},
		{
			name: "unknown member",
			model: Model{ID: "m", Members: []string{"a"}, Reactions: []Reaction{
				{ID: "r1", UpperBound: 1, Member: "b"},
			}},
			want: "unknown member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Index()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestModelCloneIsIndependent(t *testing.T) {
	m := toyModel(t)
	cloned := m.Clone()

	rxn, _ := cloned.Reaction("EX_glc_e")
	rxn.LowerBound = -1
	rxn.Metabolites["glc_e"] = -2
	cloned.Objective["bio1"] = 2

	orig, _ := m.Reaction("EX_glc_e")
	if orig.LowerBound != -10 {
		t.Fatalf("clone mutation leaked into original bounds: %f", orig.LowerBound)
	}
	if orig.Metabolites["glc_e"] != -1 {
		t.Fatalf("clone mutation leaked into original stoichiometry")
	}
	if m.Objective["bio1"] != 1 {
		t.Fatalf("clone mutation leaked into original objective")
	}
	if len(cloned.ExchangeReactions()) != 2 {
		t.Fatalf("expected clone to be indexed")
	}
}

func TestMediumHelpers(t *testing.T) {
	medium := Medium{"EX_b": 2, "EX_a": 10}

	ids := medium.IDs()
	if len(ids) != 2 || ids[0] != "EX_a" || ids[1] != "EX_b" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
	if !medium.Has("EX_a") || medium.Has("EX_c") {
		t.Fatalf("unexpected Has result")
	}
	if got := medium.Fingerprint(); got != "EX_a=10;EX_b=2;" {
		t.Fatalf("unexpected fingerprint %q", got)
	}
	var complete Medium
	if complete.Fingerprint() != "complete" {
		t.Fatalf("expected nil medium fingerprint to be 'complete'")
	}
	if complete.Clone() != nil {
		t.Fatalf("expected clone of nil medium to stay nil")
	}

	cloned := medium.Clone()
	cloned["EX_a"] = 1
	if medium["EX_a"] != 10 {
		t.Fatalf("medium clone is not independent")
	}
}

func TestParseModelYAMLAndJSON(t *testing.T) {
	yamlDoc := `
id: m1
metabolites:
  - {id: a_e, compartment: e0}
reactions:
  - id: EX_a_e
    metabolites: {a_e: -1}
    lower_bound: -5
    upper_bound: 5
  - id: bio1
    metabolites: {a_e: -1}
    lower_bound: 0
    upper_bound: 10
objective: {bio1: 1}
`
	m, err := ParseModel([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("ParseModel yaml error: %v", err)
	}
	if len(m.ExchangeReactions()) != 1 {
		t.Fatalf("expected 1 exchange reaction, got %d", len(m.ExchangeReactions()))
	}
	if m.IsExchange("bio1") {
		t.Fatalf("biomass draining an extracellular metabolite must not be an exchange")
	}

	jsonDoc := `{"id": "m2", "metabolites": [{"id": "x_e"}], "reactions": [
		{"id": "EX_x_e", "metabolites": {"x_e": -1}, "lower_bound": -1, "upper_bound": 1}],
		"objective": {"EX_x_e": 1}}`
	m2, err := ParseModel([]byte(jsonDoc))
	if err != nil {
		t.Fatalf("ParseModel json error: %v", err)
	}
	if m2.ID != "m2" {
		t.Fatalf("expected id m2, got %s", m2.ID)
	}

	if _, err := ParseModel([]byte("id: [")); err == nil {
		t.Fatalf("expected parse error for malformed yaml")
	}
}

func TestLoadModelAndMedium(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(modelPath, []byte("id: m\nmetabolites: []\nreactions: []\n"), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if _, err := LoadModel(modelPath); err != nil {
		t.Fatalf("LoadModel error: %v", err)
	}
	if _, err := LoadModel(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing model file")
	}

	mediumPath := filepath.Join(dir, "medium.yaml")
	if err := os.WriteFile(mediumPath, []byte("EX_glc_e: 10\nEX_o2_e: 20\n"), 0o600); err != nil {
		t.Fatalf("write medium: %v", err)
	}
	medium, err := LoadMedium(mediumPath)
	if err != nil {
		t.Fatalf("LoadMedium error: %v", err)
	}
	if medium["EX_o2_e"] != 20 {
		t.Fatalf("expected EX_o2_e 20, got %f", medium["EX_o2_e"])
	}

	badPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badPath, []byte("EX_glc_e: -1\n"), 0o600); err != nil {
		t.Fatalf("write medium: %v", err)
	}
	if _, err := LoadMedium(badPath); err == nil {
		t.Fatalf("expected error for negative uptake rate")
	}
}
