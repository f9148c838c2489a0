// Package testmodels provides small organism models with known interaction
// scores for tests.
//
// The producer makes x from glucose and can grow on y. The consumer needs
// glucose and x to grow and makes y from glucose. In complete media:
//
//	minimal media:   producer {EX_glc_e}, consumer {EX_glc_e, EX_x_e}
//	community media: interacting {EX_glc_e}, non-interacting {EX_glc_e, EX_x_e}
//	production:      producer {x_e}, consumer {y_e}
//	uptake:          producer {y_e: 0.5}, consumer {x_e: 0.5}
//	                 (consumer {x_e: 1} with the MU growth floor)
//	growth:          producer 15, consumer 10
//
// With only glucose available the consumer depends on the producer.
package testmodels

import "github.com/GoSim-25-26J-441/smetana-core/pkg/models"

// Member IDs
const (
	ProducerID = "producer"
	ConsumerID = "consumer"
)

// GlucoseOnly is an environment offering glucose alone
func GlucoseOnly() models.Medium {
	return models.Medium{"EX_glc_e": 10}
}

func extracellular(ids ...string) []models.Metabolite {
	out := make([]models.Metabolite, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Metabolite{ID: id, Compartment: "e0"})
	}
	return out
}

// Producer returns a fresh producer model
func Producer() *models.Model {
	mets := append(extracellular("glc_e", "x_e", "y_e"),
		models.Metabolite{ID: "glc_c", Compartment: "c0"})
	rxns := []models.Reaction{
		{ID: "EX_glc_e", Metabolites: map[string]float64{"glc_e": -1}, LowerBound: -10, UpperBound: 1000},
		{ID: "EX_x_e", Metabolites: map[string]float64{"x_e": -1}, LowerBound: 0, UpperBound: 1000},
		{ID: "EX_y_e", Metabolites: map[string]float64{"y_e": -1}, LowerBound: -10, UpperBound: 1000},
		{ID: "T_glc", Metabolites: map[string]float64{"glc_e": -1, "glc_c": 1}, LowerBound: 0, UpperBound: 1000},
		{ID: "sec_x", Metabolites: map[string]float64{"glc_c": -1, "x_e": 2}, LowerBound: 0, UpperBound: 1000},
		{ID: "T_y", Metabolites: map[string]float64{"y_e": -2, "glc_c": 1}, LowerBound: 0, UpperBound: 1000},
		{ID: "bio1", Metabolites: map[string]float64{"glc_c": -1}, LowerBound: 0, UpperBound: 1000},
	}
	m, err := models.NewModel(ProducerID, mets, rxns, map[string]float64{"bio1": 1})
	if err != nil {
		panic(err)
	}
	return m
}

// Consumer returns a fresh consumer model
func Consumer() *models.Model {
	mets := append(extracellular("glc_e", "x_e", "y_e"),
		models.Metabolite{ID: "glc_c", Compartment: "c0"},
		models.Metabolite{ID: "x_c", Compartment: "c0"})
	rxns := []models.Reaction{
		{ID: "EX_glc_e", Metabolites: map[string]float64{"glc_e": -1}, LowerBound: -10, UpperBound: 1000},
		{ID: "EX_x_e", Metabolites: map[string]float64{"x_e": -1}, LowerBound: -10, UpperBound: 1000},
		{ID: "EX_y_e", Metabolites: map[string]float64{"y_e": -1}, LowerBound: 0, UpperBound: 1000},
		{ID: "T_glc", Metabolites: map[string]float64{"glc_e": -1, "glc_c": 1}, LowerBound: 0, UpperBound: 1000},
		{ID: "T_x", Metabolites: map[string]float64{"x_e": -1, "x_c": 1}, LowerBound: 0, UpperBound: 1000},
		{ID: "sec_y", Metabolites: map[string]float64{"glc_c": -1, "y_e": 1}, LowerBound: 0, UpperBound: 1000},
		{ID: "bio1", Metabolites: map[string]float64{"glc_c": -1, "x_c": -1}, LowerBound: 0, UpperBound: 1000},
	}
	m, err := models.NewModel(ConsumerID, mets, rxns, map[string]float64{"bio1": 1})
	if err != nil {
		panic(err)
	}
	return m
}

// Pair returns fresh producer and consumer models in that order
func Pair() []*models.Model {
	return []*models.Model{Producer(), Consumer()}
}
