// Command main runs the database seeder for SocialHub.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"socialhub/internal/bootstrap"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/identity"
	"socialhub/internal/middleware"
	"socialhub/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "Apply a YAML fixtures file instead of random data")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	token := flag.String("token", "", "Print a development bearer token for this user id and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, os.Stderr)

	if *token != "" {
		return printToken(cfg, *token)
	}
	if cfg.IsProduction() {
		return errors.New("refusing to seed a production database")
	}

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:  *numUsers,
		NumPosts:  *numPosts,
		BatchSize: 100,
		MaxDays:   90,
		RandSeed:  *randSeed,
		DryRun:    *dryRun,
	})

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	var sum *seed.Summary
	if *fixtures != "" {
		log.Printf("Applying fixtures from %s", *fixtures)
		fx, err := seed.LoadFixturesFile(*fixtures)
		if err != nil {
			return err
		}
		sum, err = s.ApplyFixtures(ctx, fx)
		if err != nil {
			return fmt.Errorf("fixtures failed: %w", err)
		}
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)
		sum, err = s.Run(ctx)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	log.Printf("✨ All done! %s", sum)
	log.Println("🔑 Use -token <userId> to mint a bearer token for any seeded user.")
	return nil
}

func printToken(cfg *config.Config, userID string) error {
	if cfg.IsProduction() {
		return errors.New("refusing to mint tokens in production")
	}
	tok, err := bootstrap.NewVerifier(cfg).Issue(identity.Identity{SubjectID: userID}, 24*time.Hour)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(tok)
	return nil
}
