// Package nutrition defines the fixed record every aggregate in a meal
// plan is computed from. Keeping the four macros as named fields (rather
// than a loose map) makes the roll-up arithmetic statically checkable.
package nutrition

// Totals holds calories plus the three macros, in the units the food
// database reports them (kcal and grams).
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum of two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fat:      t.Fat + o.Fat,
	}
}

// Scale multiplies every field by factor. Nutrition scales linearly with
// amount, so this is how per-serving data becomes per-requested-amount.
func (t Totals) Scale(factor float64) Totals {
	return Totals{
		Calories: t.Calories * factor,
		Protein:  t.Protein * factor,
		Carbs:    t.Carbs * factor,
		Fat:      t.Fat * factor,
	}
}

// IsZero reports whether every field is zero, the state of an ingredient
// whose nutrition has not been resolved yet.
func (t Totals) IsZero() bool {
	return t == Totals{}
}

// Sum folds a slice of totals.
func Sum(ts []Totals) Totals {
	var out Totals
	for _, t := range ts {
		out = out.Add(t)
	}
	return out
}

// Mean averages a slice of totals. An empty slice yields the zero value;
// callers decide their own fallback.
func Mean(ts []Totals) Totals {
	if len(ts) == 0 {
		return Totals{}
	}
	return Sum(ts).Scale(1 / float64(len(ts)))
}
