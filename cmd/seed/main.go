// Command seed fills the configured store with generated founders,
// developers and project ideas for demos and manual testing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

var (
	stacks = [][]string{
		{"Flutter", "Firebase"},
		{"React", "Node.js", "PostgreSQL"},
		{"Go", "Fiber", "PostgreSQL"},
		{"Next.js", "Supabase"},
		{},
	}
	stages = []string{"Idea", "Prototype", "MVP", "Early Revenue"}
	skills = []string{"React", "Go", "Flutter", "Python", "DevOps", "UI/UX", "Node.js", "PostgreSQL"}
)

type options struct {
	founders   int
	developers int
	ideas      int
	roles      int
	verifyRate float64
	password   string
	randSeed   int64
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.IntVar(&opts.founders, "founders", 5, "number of founder accounts to create")
	flagSet.IntVar(&opts.developers, "developers", 10, "number of developer accounts to create")
	flagSet.IntVar(&opts.ideas, "ideas", 8, "number of idea submissions to create")
	flagSet.IntVar(&opts.roles, "open-roles", 4, "number of open role posts to create")
	flagSet.Float64Var(&opts.verifyRate, "verify-rate", 0.6, "fraction of ideas verified and staffed")
	flagSet.StringVar(&opts.password, "password", "buildforge-demo", "password given to every generated account")
	flagSet.Int64Var(&opts.randSeed, "rand-seed", 0, "seed for generated data (0 picks one from the clock)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: seed [flags]\n\nFills the store selected by STORE_BACKEND with demo data.\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if opts.verifyRate < 0 || opts.verifyRate > 1 {
		return fmt.Errorf("--verify-rate must be between 0 and 1")
	}

	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if opts.randSeed == 0 {
		opts.randSeed = time.Now().UnixNano()
	}
	gofakeit.Seed(opts.randSeed)

	provider, _, err := database.OpenProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx := context.Background()
	summary, err := seed(ctx, provider, cfg, opts)
	if err != nil {
		return err
	}

	slog.Info("seed completed",
		"founders", summary.founders,
		"developers", summary.developers,
		"ideas", summary.ideas,
		"verified", summary.verified,
		"open_roles", summary.roles,
		"rand_seed", opts.randSeed,
	)
	return nil
}

type summary struct {
	founders, developers, ideas, verified, roles int
}

func seed(ctx context.Context, provider store.Provider, cfg *config.Config, opts options) (summary, error) {
	var sum summary

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), cfg.BcryptCost)
	if err != nil {
		return sum, fmt.Errorf("hash password: %w", err)
	}

	founders := make([]*models.User, 0, opts.founders)
	for i := 0; i < opts.founders; i++ {
		u := fakeUser(models.RoleFounder, string(hash))
		u.Attributes = map[string]any{
			"startup_name":        gofakeit.Company(),
			"startup_stage":       stages[gofakeit.Number(0, len(stages)-1)],
			"startup_description": gofakeit.Sentence(12),
			"budget":              fmt.Sprintf("$%d", gofakeit.Number(1, 50)*1000),
			"timeline":            fmt.Sprintf("%d weeks", gofakeit.Number(4, 16)),
		}
		if err := provider.CreateUser(ctx, u); err != nil {
			return sum, fmt.Errorf("create founder: %w", err)
		}
		founders = append(founders, u)
		sum.founders++
	}

	developers := make([]string, 0, opts.developers)
	for i := 0; i < opts.developers; i++ {
		u := fakeUser(models.RoleDeveloper, string(hash))
		u.Attributes = map[string]any{
			"college":           gofakeit.Company() + " Institute",
			"skills":            pick(skills, gofakeit.Number(1, 4)),
			"github_url":        "https://github.com/" + strings.ToLower(gofakeit.Username()),
			"time_availability": fmt.Sprintf("%d hrs/week", gofakeit.Number(5, 30)),
			"experience":        fmt.Sprintf("%d years", gofakeit.Number(0, 8)),
		}
		if err := provider.CreateUser(ctx, u); err != nil {
			return sum, fmt.Errorf("create developer: %w", err)
		}
		developers = append(developers, u.ID)
		sum.developers++
	}

	posts := services.NewPostService(provider, services.NewContentFilter())
	if len(founders) > 0 {
		for i := 0; i < opts.ideas; i++ {
			founder := founders[gofakeit.Number(0, len(founders)-1)]
			post, err := posts.Create(ctx, founder, &dto.CreatePostRequest{
				Type:      models.PostIdeaSubmission,
				Title:     gofakeit.AppName(),
				Content:   gofakeit.Paragraph(1, 3, 12, " "),
				TechStack: stacks[gofakeit.Number(0, len(stacks)-1)],
			})
			if err != nil {
				return sum, fmt.Errorf("create idea: %w", err)
			}
			sum.ideas++

			if gofakeit.Float64Range(0, 1) >= opts.verifyRate {
				continue
			}
			if _, err := posts.Verify(ctx, "seed", post.ID); err != nil {
				return sum, fmt.Errorf("verify idea: %w", err)
			}
			sum.verified++
			if len(developers) == 0 {
				continue
			}
			team := pick(developers, gofakeit.Number(1, min(3, len(developers))))
			if _, _, err := posts.AssignTeam(ctx, "seed", post.ID, team); err != nil {
				return sum, fmt.Errorf("assign team: %w", err)
			}
		}

		for i := 0; i < opts.roles; i++ {
			founder := founders[gofakeit.Number(0, len(founders)-1)]
			post, err := posts.Create(ctx, founder, &dto.CreatePostRequest{
				Type:    models.PostOpenRole,
				Title:   gofakeit.JobTitle(),
				Content: gofakeit.Sentence(20),
				Company: founder.Attributes["startup_name"].(string),
				JobLink: "https://" + gofakeit.DomainName() + "/careers",
			})
			if err != nil {
				return sum, fmt.Errorf("create open role: %w", err)
			}
			if _, err := posts.Verify(ctx, "seed", post.ID); err != nil {
				return sum, fmt.Errorf("verify open role: %w", err)
			}
			sum.roles++
		}
	}

	return sum, nil
}

func fakeUser(role models.Role, passwordHash string) *models.User {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	return &models.User{
		ID:           uuid.NewString(),
		Name:         first + " " + last,
		Email:        strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, gofakeit.Number(100, 999))),
		Phone:        gofakeit.Phone(),
		Role:         role,
		Bio:          gofakeit.Sentence(10),
		PasswordHash: passwordHash,
		AuthProvider: "email",
		CreatedAt:    time.Now(),
	}
}

// pick returns n distinct entries of list in random order.
func pick(list []string, n int) []string {
	shuffled := append([]string(nil), list...)
	gofakeit.ShuffleStrings(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
