package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhub/studyhub-api/internal/config"
	"github.com/studyhub/studyhub-api/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runtime configuration",
		Long:  "List the CORS and rate limit configuration stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			ctx := context.Background()

			corsCfg, err := database.NewCorsConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get cors config: %w", err)
			}
			if corsCfg == nil {
				fmt.Println("CORS: not configured (falling back to FRONTEND_URL)")
			} else {
				fmt.Println("CORS:")
				fmt.Printf("  Allowed origins: %s\n", corsCfg.AllowedOrigins)
				fmt.Printf("  Allow credentials: %v\n", corsCfg.AllowCredentials)
				fmt.Printf("  Max-Age: %d\n", corsCfg.MaxAge)
			}

			rateCfg, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get ratelimit config: %w", err)
			}
			if rateCfg == nil {
				fmt.Println("Rate limit: not configured (using default)")
			} else {
				fmt.Printf("Rate limit: %s\n", rateCfg.Rate)
			}

			return nil
		},
	}
}
