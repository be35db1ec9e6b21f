// Command seed loads reference categories and optional demo data.
package main

import (
	"context"
	"flag"
	"log"

	"cookconnect/internal/bootstrap"
	"cookconnect/internal/config"
	"cookconnect/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	numRecipes := flag.Int("recipes", 60, "Number of demo recipes to create")
	maxComments := flag.Int("comments", 4, "Maximum comments per recipe")
	maxDays := flag.Int("days", 90, "Spread recipe dates over this many past days")
	shouldClean := flag.Bool("clean", false, "Remove existing users and recipes first")
	categoriesOnly := flag.Bool("categories-only", false, "Only load the reference categories")
	fast := flag.Bool("fast", false, "Store the demo password unhashed (local use only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SeedCategories: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	if *categoriesOnly {
		log.Println("Categories loaded")
		return
	}

	s := seed.NewSeeder(rt.DB, seed.Options{
		NumUsers:    *numUsers,
		NumRecipes:  *numRecipes,
		MaxComments: *maxComments,
		MaxDays:     *maxDays,
		SkipBcrypt:  *fast,
	})
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Created %d users, %d recipes, %d comments and %d reactions", sum.Users, sum.Recipes, sum.Comments, sum.Reactions)
	if !*fast {
		log.Printf("All demo users sign in with the password %q", seed.DemoPassword)
	}
}
