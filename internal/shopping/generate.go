package shopping

import (
	"strings"

	"github.com/google/uuid"

	"mealdesk/internal/plan"
	"mealdesk/internal/pricing"
	"mealdesk/internal/units"
)

// Generator builds a fresh shopping list from a plan's ingredients.
type Generator struct {
	pricing pricing.Signal
}

// NewGenerator creates a generator pricing items through signal.
func NewGenerator(signal pricing.Signal) *Generator {
	return &Generator{pricing: signal}
}

// Generate merges every ingredient across every meal and day of the
// plan into one list. Ingredients group by (name, unit); duplicate
// groups sum their amounts and the last non-empty notes in plan order
// win. Prices come from the pricing signal for the merged amount, and
// items the signal cannot categorize land in DefaultCategory. Item
// order follows first appearance in the plan.
func (g *Generator) Generate(p *plan.Plan) *List {
	type group struct {
		name   string
		unit   string
		amount float64
		notes  string
	}
	var order []string
	groups := make(map[string]*group)

	for _, ing := range p.Ingredients() {
		key := mergeKey(ing.Name, ing.Unit)
		grp, ok := groups[key]
		if !ok {
			grp = &group{name: strings.TrimSpace(ing.Name), unit: units.Normalize(ing.Unit)}
			groups[key] = grp
			order = append(order, key)
		}
		grp.amount += ing.Amount
		if ing.Notes != "" {
			grp.notes = ing.Notes
		}
	}

	list := &List{PlanID: p.ID, Items: make([]Item, 0, len(order))}
	for _, key := range order {
		grp := groups[key]
		category := g.pricing.CategoryFor(grp.name)
		if category == "" {
			category = DefaultCategory
		}
		list.Items = append(list.Items, Item{
			ID:             uuid.NewString(),
			Name:           grp.name,
			Amount:         grp.amount,
			Unit:           grp.unit,
			Category:       category,
			EstimatedPrice: g.pricing.PriceFor(grp.name, grp.amount, grp.unit),
			Notes:          grp.notes,
		})
	}
	list.RecomputeTotal()
	return list
}

func mergeKey(name, unit string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + units.Normalize(unit)
}
