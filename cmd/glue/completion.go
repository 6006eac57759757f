package main

import (
	"github.com/posener/complete"

	"github.com/d2verb/glue/internal/protocol"
)

var coffeeActions = []protocol.CoffeeAction{
	protocol.CoffeeDrink,
	protocol.CoffeeRelax,
	protocol.CoffeeToggle,
	protocol.CoffeeGet,
}

// newCoffeeActionPredictor completes the actions accepted by 'coffee'.
func newCoffeeActionPredictor() complete.Predictor {
	names := make([]string, 0, len(coffeeActions))
	for _, a := range coffeeActions {
		names = append(names, a.String())
	}
	return complete.PredictSet(names...)
}

// newConfigFilePredictor completes YAML files for --config.
func newConfigFilePredictor() complete.Predictor {
	return complete.PredictOr(
		complete.PredictFiles("*.yaml"),
		complete.PredictFiles("*.yml"),
	)
}
