package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/usecase/memory"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Manage stored memory records",
		Commands: []*cli.Command{
			memoryListCommand(),
			memoryForgetCommand(),
			memoryClearCommand(),
		},
	}
}

func userFlag(userID *string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "user",
		Aliases:     []string{"u"},
		Usage:       "Student user ID",
		Sources:     cli.EnvVars("SAHAYAK_USER"),
		Destination: userID,
		Required:    true,
	}
}

func memoryListCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{userFlag(&userID)}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List a user's memory records",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			uc := memory.New(repo)

			records, err := uc.List(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to list memory records")
			}

			if len(records) == 0 {
				fmt.Fprintf(c.Root().Writer, "No memory records for user %s\n", userID)
				return nil
			}

			for _, r := range records {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%d\t%s\t%s\n",
					r.ID,
					r.Subject,
					r.UsageCount,
					r.CreatedAt.Format("2006-01-02 15:04:05"),
					r.Question,
				)
			}

			return nil
		},
	}
}

func memoryForgetCommand() *cli.Command {
	var (
		cfg      config
		userID   string
		recordID string
	)

	flags := []cli.Flag{
		userFlag(&userID),
		&cli.StringFlag{
			Name:        "id",
			Aliases:     []string{"i"},
			Usage:       "Memory record ID to forget",
			Destination: &recordID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "forget",
		Usage: "Remove a single memory record",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			uc := memory.New(repo)

			if err := uc.Forget(ctx, userID, model.MemoryID(recordID)); err != nil {
				return goerr.Wrap(err, "failed to forget memory record")
			}

			fmt.Fprintf(c.Root().Writer, "Memory record forgotten: %s\n", recordID)
			return nil
		},
	}
}

func memoryClearCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{userFlag(&userID)}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all memory records of a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			uc := memory.New(repo)

			if err := uc.Clear(ctx, userID); err != nil {
				return goerr.Wrap(err, "failed to clear memory records")
			}

			fmt.Fprintf(c.Root().Writer, "Memory cleared for user %s\n", userID)
			return nil
		},
	}
}
