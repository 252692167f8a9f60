package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mealdesk/internal/app"
	"mealdesk/internal/config"
	"mealdesk/internal/database"
	"mealdesk/internal/fooddb"
	"mealdesk/internal/foodlog"
	"mealdesk/internal/logging"
	"mealdesk/internal/notify"
	"mealdesk/internal/nutrition"
	"mealdesk/internal/plan"
	"mealdesk/internal/pricing"
	"mealdesk/internal/resolver"
	"mealdesk/internal/shopping"
	"mealdesk/internal/suggest"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var notifier notify.Notifier = notify.NewSlog(logger)
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("failed to initialize telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = notify.Fanout{notify.NewSlog(logger), tg}
	}

	var catalog fooddb.Database
	if fileCatalog, err := fooddb.LoadFile(cfg.FoodCatalogPath); err != nil {
		logger.Warn("food catalog unavailable, nutrition resolution disabled", "error", err)
		catalog = fooddb.NewMemory()
	} else {
		catalog = fileCatalog
	}

	var suggester suggest.Client
	if cfg.GeminiAPIKey != "" {
		suggester, err = suggest.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("failed to initialize suggestion client", "error", err)
			os.Exit(1)
		}
		defer suggester.Close()
	}

	planRepo := plan.NewRepository(db.SQL)
	shopRepo := shopping.NewRepository(db.SQL)
	signal := pricing.NewStatic(nil, nil)
	cache := shopping.NewCache(shopRepo, shopping.NewGenerator(signal), logger)
	res := resolver.New(catalog, notifier, logger)
	bridge := foodlog.NewBridge(foodlog.NewRepository(db.SQL), notifier)

	application := app.New(planRepo, shopRepo, cache, res, bridge, notifier, suggester, logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan-new":
		cmd := flag.NewFlagSet("plan-new", flag.ExitOnError)
		days := cmd.Int("days", 7, "Number of days to plan")
		start := cmd.String("start", time.Now().Format("2006-01-02"), "Start date (YYYY-MM-DD)")
		restrict := cmd.String("restrictions", "", "Comma-separated dietary restrictions")
		calories := cmd.Float64("calories", 2000, "Daily calorie target")
		cmd.Parse(os.Args[2:])

		req := suggest.Request{
			Days:      *days,
			StartDate: *start,
			Target:    nutrition.Totals{Calories: *calories},
		}
		if *restrict != "" {
			req.DietaryRestrictions = strings.Split(*restrict, ",")
		}
		p, err := application.CreatePlan(ctx, req)
		if err != nil {
			logger.Error("plan creation failed", "error", err)
			os.Exit(1)
		}
		printJSON(p)

	case "plan-show":
		cmd := flag.NewFlagSet("plan-show", flag.ExitOnError)
		id := cmd.String("id", "", "Plan id")
		cmd.Parse(os.Args[2:])
		p, err := application.GetPlan(ctx, *id)
		if err != nil {
			logger.Error("plan lookup failed", "error", err)
			os.Exit(1)
		}
		printJSON(p)

	case "plan-list":
		cmd := flag.NewFlagSet("plan-list", flag.ExitOnError)
		limit := cmd.Int("limit", 10, "Maximum number of plans")
		cmd.Parse(os.Args[2:])
		plans, err := application.ListPlans(ctx, *limit)
		if err != nil {
			logger.Error("plan listing failed", "error", err)
			os.Exit(1)
		}
		printJSON(plans)

	case "plan-delete":
		cmd := flag.NewFlagSet("plan-delete", flag.ExitOnError)
		id := cmd.String("id", "", "Plan id")
		cmd.Parse(os.Args[2:])
		if err := application.DeletePlan(ctx, *id); err != nil {
			logger.Error("plan deletion failed", "error", err)
			os.Exit(1)
		}

	case "shopping":
		cmd := flag.NewFlagSet("shopping", flag.ExitOnError)
		id := cmd.String("plan", "", "Plan id")
		force := cmd.Bool("force", false, "Regenerate even when a cached list exists")
		cmd.Parse(os.Args[2:])
		list, err := application.ShoppingList(ctx, *id, *force)
		if err != nil {
			logger.Error("shopping list failed", "error", err)
			os.Exit(1)
		}
		printJSON(list)

	case "edit-ingredient":
		cmd := flag.NewFlagSet("edit-ingredient", flag.ExitOnError)
		id := cmd.String("plan", "", "Plan id")
		day := cmd.Int("day", 0, "Day index")
		meal := cmd.Int("meal", 0, "Meal index")
		ing := cmd.Int("ingredient", 0, "Ingredient index")
		amount := cmd.Float64("amount", 0, "New amount")
		unit := cmd.String("unit", "g", "New unit")
		cmd.Parse(os.Args[2:])
		p, err := application.EditIngredient(ctx, *id, *day, *meal, *ing, *amount, *unit)
		if err != nil {
			logger.Error("ingredient edit failed", "error", err)
			os.Exit(1)
		}
		printJSON(p)

	case "check-item":
		cmd := flag.NewFlagSet("check-item", flag.ExitOnError)
		id := cmd.String("plan", "", "Plan id")
		item := cmd.String("item", "", "Shopping item id")
		checked := cmd.Bool("checked", true, "Checked state")
		cmd.Parse(os.Args[2:])
		list, err := application.SetItemChecked(ctx, *id, *item, *checked)
		if err != nil {
			logger.Error("item update failed", "error", err)
			os.Exit(1)
		}
		printJSON(list)

	case "log-meal":
		cmd := flag.NewFlagSet("log-meal", flag.ExitOnError)
		id := cmd.String("plan", "", "Plan id")
		date := cmd.String("date", time.Now().Format("2006-01-02"), "Date (YYYY-MM-DD)")
		mealType := cmd.String("meal", "dinner", "Meal type")
		cmd.Parse(os.Args[2:])
		res, err := application.LogMeal(ctx, *id, *date, plan.MealType(*mealType))
		if err != nil {
			logger.Error("meal logging failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Logged %d of %d entries\n", len(res.Logged), res.Attempted)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func printUsage() {
	fmt.Println(`Usage: mealdesk <command> [options]

Commands:
  plan-new        Create a meal plan
  plan-show       Show a plan with its nutrition totals
  plan-list       List recent plans
  plan-delete     Delete a plan and its shopping list
  shopping        Get or regenerate the plan's shopping list
  edit-ingredient Edit one ingredient's amount/unit
  check-item      Check or uncheck a shopping list item
  log-meal        Log a planned meal into the food log`)
}
