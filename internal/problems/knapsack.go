package problems

import "github.com/copyleftdev/FJORD/internal/model"

var (
	knapsackItems    = []string{"hammer", "wrench", "screwdriver", "towel"}
	knapsackValues   = map[string]float64{"hammer": 8, "wrench": 3, "screwdriver": 6, "towel": 11}
	knapsackWeights  = map[string]float64{"hammer": 5, "wrench": 7, "screwdriver": 4, "towel": 3}
	knapsackCapacity = 14.0
)

// Knapsack builds the toolbox selection benchmark: pick items that
// maximize the packed value while the packed weight stays within the
// capacity of 14. The optimum of 25 packs hammer, screwdriver and
// towel at weight 12.
func Knapsack() *model.Model {
	m := model.New("knapsack")

	x := m.AddVars("x", model.StringKeys(knapsackItems...), model.Binary())

	value := make([]model.Expr, len(knapsackItems))
	weight := make([]model.Expr, len(knapsackItems))
	for i, item := range knapsackItems {
		value[i] = model.Scale(knapsackValues[item], x.At(item))
		weight[i] = model.Scale(knapsackWeights[item], x.At(item))
	}

	m.Maximize("value", model.Add(value...))
	m.AddConstraint("weight", model.LessEq(model.Add(weight...), model.Const(knapsackCapacity)))

	return m
}
