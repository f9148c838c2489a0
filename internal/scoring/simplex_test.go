package scoring

import (
	"context"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/smetana-core/internal/solver/simplex"
	"github.com/GoSim-25-26J-441/smetana-core/internal/testmodels"
)

func TestUptakeFrequencyWithSimplex(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		floor     bool
		producerY float64
		consumerX float64
	}{
		{name: "no floor", producerY: 0.5, consumerX: 0.5},
		// with the floor the consumer cannot grow once x is cut
		{name: "growth floor", floor: true, producerY: 0.5, consumerX: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			p.UptakeGrowthFloor = tt.floor

			producer, err := UptakeFrequency(ctx, simplex.New(), testmodels.Producer(), NewMetaboliteSet("y_e"), p)
			if err != nil {
				t.Fatalf("UptakeFrequency producer error: %v", err)
			}
			if producer == nil || math.Abs(producer.Frequency("y_e")-tt.producerY) > 1e-9 || len(producer.Frequencies) != 1 {
				t.Fatalf("expected producer {y_e: %g}, got %+v", tt.producerY, producer)
			}

			consumer, err := UptakeFrequency(ctx, simplex.New(), testmodels.Consumer(), NewMetaboliteSet("x_e"), p)
			if err != nil {
				t.Fatalf("UptakeFrequency consumer error: %v", err)
			}
			if consumer == nil || math.Abs(consumer.Frequency("x_e")-tt.consumerX) > 1e-9 || len(consumer.Frequencies) != 1 {
				t.Fatalf("expected consumer {x_e: %g}, got %+v", tt.consumerX, consumer)
			}
		})
	}
}

func TestSpeciesCouplingWithSimplex(t *testing.T) {
	ctx := context.Background()
	comm := buildCommunity(t, testmodels.Pair()...)
	p := testParams()
	p.Environment = testmodels.GlucoseOnly()

	consumer, err := SpeciesCoupling(ctx, simplex.New(), comm, testmodels.ConsumerID, p)
	if err != nil {
		t.Fatalf("SpeciesCoupling consumer error: %v", err)
	}
	if consumer == nil || consumer.Iterations != 1 || consumer.Score(testmodels.ProducerID) != 1 {
		t.Fatalf("expected the consumer to depend on the producer, got %+v", consumer)
	}

	producer, err := SpeciesCoupling(ctx, simplex.New(), comm, testmodels.ProducerID, p)
	if err != nil {
		t.Fatalf("SpeciesCoupling producer error: %v", err)
	}
	if producer == nil || producer.Score(testmodels.ConsumerID) != 0 {
		t.Fatalf("the producer grows on glucose alone, got %+v", producer)
	}
}
