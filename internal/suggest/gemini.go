// Package suggest wraps the meal-suggestion service. The suggestion
// algorithm itself is opaque; this package only shapes the request,
// parses the strict-JSON reply into a plan, and rolls its totals up.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"mealdesk/internal/nutrition"
	"mealdesk/internal/plan"
)

// Request describes the plan being asked for.
type Request struct {
	Days                int
	StartDate           string
	DietaryRestrictions []string
	Target              nutrition.Totals
}

// Client produces a draft meal plan. Implementations are interchangeable
// and optional; without one, plans are built manually.
type Client interface {
	SuggestPlan(ctx context.Context, req Request) (*plan.Plan, error)
	Close() error
}

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini-backed suggestion client.
func NewGeminiClient(ctx context.Context, apiKey string) (Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-pro")
	return &geminiClient{client: client, model: model}, nil
}

// SuggestPlan asks the model for a draft plan and validates the reply.
func (c *geminiClient) SuggestPlan(ctx context.Context, req Request) (*plan.Plan, error) {
	prompt := buildPrompt(req)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("generated content is not text")
	}

	p, err := ParsePlan([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse suggested plan: %w. Response: %s", err, text)
	}
	p.DietaryRestrictions = req.DietaryRestrictions
	p.TargetNutrition = req.Target
	return p, nil
}

func (c *geminiClient) Close() error {
	return c.client.Close()
}

func buildPrompt(req Request) string {
	var restrictions string
	if len(req.DietaryRestrictions) > 0 {
		restrictions = strings.Join(req.DietaryRestrictions, ", ")
	} else {
		restrictions = "none"
	}

	return fmt.Sprintf(`
You are an expert meal planner. Create a %d-day meal plan starting on %s.

Dietary restrictions: %s
Daily nutrition target: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat.

Return the result strictly as a JSON object with this structure:
{
  "days": [
    {
      "date": "YYYY-MM-DD",
      "meals": [
        {
          "mealType": "breakfast|lunch|dinner|snack",
          "foodName": "Dish name",
          "portionSize": "1 bowl",
          "ingredients": [
            {"name": "ingredient", "amount": 100, "unit": "g",
             "calories": 0, "protein": 0, "carbs": 0, "fat": 0}
          ]
        }
      ]
    }
  ]
}

Do not include any other text or formatting in your response.
`, req.Days, req.StartDate, restrictions,
		req.Target.Calories, req.Target.Protein, req.Target.Carbs, req.Target.Fat)
}

// ParsePlan decodes a suggested plan from strict JSON, assigns it an
// identity, and recomputes every aggregate from the leaves.
func ParsePlan(data []byte) (*plan.Plan, error) {
	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.Recompute()
	return &p, nil
}
