package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/importer"
	"github.com/finnews/finnews/routes"
	"github.com/finnews/finnews/seed"
	"github.com/finnews/finnews/utils"
)

func main() {
	app := &cli.App{
		Name:  "finnews",
		Usage: "Financial news API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "Path to the optional JSON config file",
				EnvVars: []string{"FINNEWS_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.LoadFile(c.String("config"))
			return utils.InitLogger(cfg)
		},
		After: func(*cli.Context) error {
			_ = utils.Logger.Sync()
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API (default)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Listen port, overrides APP_PORT",
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "seed",
				Usage: "Insert the sample articles",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Delete existing articles and comments first",
					},
				},
				Action: seedArticles,
			},
			{
				Name:      "import-feed",
				Usage:     "Import articles from an RSS or Atom feed",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category for every imported article",
					},
					&cli.StringSliceFlag{
						Name:  "tags",
						Usage: "Tags added to every imported article",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of feed items to consider",
					},
				},
				Action: importFeed,
			},
			{
				Name:  "create-admin",
				Usage: "Create an admin account or promote an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
					&cli.StringFlag{Name: "name"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg := config.Get()
	if p := strings.TrimSpace(c.String("port")); p != "" {
		cfg.AppPort = p
		config.Set(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	db := config.InitDatabase()
	r := routes.SetupRouter(db, utils.NewRevocationStore(db))

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func openDB() (*gorm.DB, error) {
	db, err := config.OpenDatabase(config.Get())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(*cli.Context) error {
	if _, err := openDB(); err != nil {
		return err
	}
	utils.Sugar.Info("migration complete")
	return nil
}

func seedArticles(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	n, err := seed.Run(c.Context, db, c.Bool("reset"))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	utils.Sugar.Infof("seeded %d articles", n)
	return nil
}

func importFeed(c *cli.Context) error {
	feedURL := strings.TrimSpace(c.Args().First())
	if feedURL == "" {
		return cli.Exit("feed url required", 2)
	}
	db, err := openDB()
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := importer.New(db).ImportURL(ctx, feedURL, importer.Options{
		Category: c.String("category"),
		Tags:     c.StringSlice("tags"),
		Limit:    c.Int("limit"),
	})
	if err != nil {
		return err
	}
	utils.Sugar.Infof("imported %d articles, skipped %d", res.Created, res.Skipped)
	return nil
}

func createAdmin(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	user, created, err := seed.Admin(c.Context, db, c.String("email"), c.String("password"), c.String("name"))
	if err != nil {
		return err
	}
	if created {
		utils.Sugar.Infof("admin created id=%d email=%s", user.ID, user.Email)
	} else {
		utils.Sugar.Infof("user promoted to admin id=%d email=%s", user.ID, user.Email)
	}
	return nil
}
