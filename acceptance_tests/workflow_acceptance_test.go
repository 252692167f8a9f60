package acceptance_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealdesk/internal/app"
	"mealdesk/internal/fooddb"
	"mealdesk/internal/foodlog"
	"mealdesk/internal/notify"
	"mealdesk/internal/nutrition"
	"mealdesk/internal/plan"
	"mealdesk/internal/pricing"
	"mealdesk/internal/resolver"
	"mealdesk/internal/shopping"
	"mealdesk/internal/suggest"
)

// --- Mock suggestion client ---

const suggestedPlanJSON = `{
  "days": [
    {
      "date": "2026-03-02",
      "meals": [
        {
          "mealType": "breakfast",
          "foodName": "Oatmeal",
          "portionSize": "1 bowl",
          "ingredients": [
            {"name": "oats", "amount": 50, "unit": "g",
             "calories": 194.5, "protein": 8.45, "carbs": 33.15, "fat": 3.45},
            {"name": "milk", "amount": 200, "unit": "ml",
             "calories": 126, "protein": 6.8, "carbs": 10, "fat": 6.8}
          ]
        },
        {
          "mealType": "dinner",
          "foodName": "Chicken and rice",
          "portionSize": "1 plate",
          "ingredients": [
            {"name": "chicken breast", "amount": 150, "unit": "g",
             "calories": 248, "protein": 35, "carbs": 0, "fat": 11},
            {"name": "rice", "amount": 100, "unit": "g",
             "calories": 130, "protein": 2.7, "carbs": 28, "fat": 0.3}
          ]
        }
      ]
    },
    {
      "date": "2026-03-03",
      "meals": [
        {
          "mealType": "breakfast",
          "foodName": "Oatmeal",
          "portionSize": "1 bowl",
          "ingredients": [
            {"name": "oats", "amount": 50, "unit": "g",
             "calories": 194.5, "protein": 8.45, "carbs": 33.15, "fat": 3.45},
            {"name": "milk", "amount": 200, "unit": "ml",
             "calories": 126, "protein": 6.8, "carbs": 10, "fat": 6.8}
          ]
        }
      ]
    }
  ]
}`

type mockSuggestClient struct {
	suggestCalls int
}

func (m *mockSuggestClient) SuggestPlan(ctx context.Context, req suggest.Request) (*plan.Plan, error) {
	m.suggestCalls++
	p, err := suggest.ParsePlan([]byte(suggestedPlanJSON))
	if err != nil {
		return nil, err
	}
	p.DietaryRestrictions = req.DietaryRestrictions
	p.TargetNutrition = req.Target
	return p, nil
}

func (m *mockSuggestClient) Close() error { return nil }

// --- Fixture ---

type fixture struct {
	app       *app.App
	plans     *plan.MemoryStore
	shopStore *shopping.MemoryStore
	logStore  *foodlog.MemoryStore
}

func newFixture() *fixture {
	plans := plan.NewMemoryStore()
	shopStore := shopping.NewMemoryStore()
	logStore := foodlog.NewMemoryStore()

	catalog := fooddb.NewMemory(
		fooddb.Food{Name: "oats", ServingAmount: 100, ServingUnit: "g",
			PerServing: nutrition.Totals{Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9}},
		fooddb.Food{Name: "chicken breast", ServingAmount: 100, ServingUnit: "g",
			PerServing: nutrition.Totals{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6}},
	)
	signal := pricing.NewStatic(
		map[string]pricing.UnitPrice{"chicken breast": {PerUnit: 0.012, Unit: "g"}},
		map[string]string{"chicken breast": "Meat", "oats": "Grains"},
	)

	cache := shopping.NewCache(shopStore, shopping.NewGenerator(signal), nil)
	res := resolver.New(catalog, notify.Nop{}, nil)
	bridge := foodlog.NewBridge(logStore, notify.Nop{})

	return &fixture{
		app: app.New(plans, shopStore, cache, res, bridge,
			notify.Nop{}, &mockSuggestClient{}, nil),
		plans:     plans,
		shopStore: shopStore,
		logStore:  logStore,
	}
}

func createPlan(t *testing.T, f *fixture) *plan.Plan {
	t.Helper()
	p, err := f.app.CreatePlan(context.Background(), suggest.Request{
		Days:      2,
		StartDate: "2026-03-02",
		Target:    nutrition.Totals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 70},
	})
	require.NoError(t, err)
	return p
}

// --- Acceptance tests ---

func TestPlanCreationRollsUpNutrition(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)

	require.Len(t, p.Days, 2)
	day1 := p.Days[0]
	assert.InDelta(t, 194.5+126, day1.Meals[0].Calories, 0.001, "meal totals from ingredients")
	assert.InDelta(t, 194.5+126+248+130, day1.TotalNutrition.Calories, 0.001, "day totals from meals")
	assert.InDelta(t, (698.5+320.5)/2, p.AverageNutrition.Calories, 0.001, "plan average over days")

	stored, err := f.app.GetPlan(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestShoppingListGenerationAndCaching(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	list, err := f.app.ShoppingList(ctx, p.ID, false)
	require.NoError(t, err)

	// oats and milk appear on both days and must merge.
	byName := map[string]shopping.Item{}
	for _, it := range list.Items {
		byName[it.Name] = it
	}
	require.Len(t, list.Items, 4)
	assert.Equal(t, 100.0, byName["oats"].Amount)
	assert.Equal(t, 400.0, byName["milk"].Amount)
	assert.Equal(t, "Meat", byName["chicken breast"].Category)
	assert.Equal(t, shopping.DefaultCategory, byName["milk"].Category)
	assert.InDelta(t, 1.8, byName["chicken breast"].EstimatedPrice, 0.001)
	assert.InDelta(t, 1.8, list.TotalEstimatedCost, 0.001)

	// A second request is served from the cache, not regenerated.
	again, err := f.app.ShoppingList(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, list.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, 1, f.shopStore.Replaces)

	// Forcing rebuilds from the current plan.
	_, err = f.app.ShoppingList(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.shopStore.Replaces)
}

func TestIngredientEditResolvesAndPersists(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	// Grow the breakfast oats from 50g to one full serving.
	edited, err := f.app.EditIngredient(ctx, p.ID, 0, 0, 0, 100, "g")
	require.NoError(t, err)

	oats := edited.Days[0].Meals[0].Ingredients[0]
	assert.Equal(t, 100.0, oats.Amount)
	assert.InDelta(t, 389, oats.Calories, 0.001, "nutrition re-resolved for the new amount")
	assert.InDelta(t, 389+126, edited.Days[0].Meals[0].Calories, 0.001)
	assert.InDelta(t, 389+126+248+130, edited.Days[0].TotalNutrition.Calories, 0.001)

	stored, err := f.app.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.Days[0].Meals[0].Ingredients[0].Amount)
}

func TestIngredientEditRollsBackOnSaveFailure(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	before, err := f.app.GetPlan(ctx, p.ID)
	require.NoError(t, err)

	f.plans.SaveErr = assert.AnError
	_, err = f.app.EditIngredient(ctx, p.ID, 0, 0, 0, 100, "g")
	require.Error(t, err)
	f.plans.SaveErr = nil

	after, err := f.app.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Days[0].Meals[0].Ingredients[0].Amount,
		after.Days[0].Meals[0].Ingredients[0].Amount)
	assert.Equal(t, before.Days[0].TotalNutrition,
		after.Days[0].TotalNutrition, "aggregates restored exactly")
	assert.Equal(t, before.AverageNutrition, after.AverageNutrition)
}

func TestShoppingItemCheckOff(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	list, err := f.app.ShoppingList(ctx, p.ID, false)
	require.NoError(t, err)

	updated, err := f.app.SetItemChecked(ctx, p.ID, list.Items[0].ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Items[0].IsChecked)

	stored, err := f.shopStore.GetByPlanID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].IsChecked)
}

func TestMealLoggingIsIdempotent(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	res, err := f.app.LogMeal(ctx, p.ID, "2026-03-02", plan.MealTypeBreakfast)
	require.NoError(t, err)
	assert.Equal(t, []string{"oats", "milk"}, res.Logged)
	assert.Len(t, f.logStore.Entries, 2)

	stored, err := f.app.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Days[0].Meals[0].IsLogged, "flag survives persistence")

	appends := f.logStore.Appends
	_, err = f.app.LogMeal(ctx, p.ID, "2026-03-02", plan.MealTypeBreakfast)
	assert.ErrorIs(t, err, foodlog.ErrAlreadyLogged)
	assert.Equal(t, appends, f.logStore.Appends)
}

func TestDeletePlanDropsShoppingList(t *testing.T) {
	f := newFixture()
	p := createPlan(t, f)
	ctx := context.Background()

	_, err := f.app.ShoppingList(ctx, p.ID, false)
	require.NoError(t, err)
	require.NoError(t, f.app.DeletePlan(ctx, p.ID))

	_, err = f.app.GetPlan(ctx, p.ID)
	assert.Error(t, err)
	list, err := f.shopStore.GetByPlanID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, list)
}
