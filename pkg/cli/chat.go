package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/usecase/resolve"
	"github.com/vidyalab/sahayak/pkg/utils/logging"
)

func chatCommand() *cli.Command {
	var (
		cfg     config
		userID  string
		subject string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Student user ID",
			Sources:     cli.EnvVars("SAHAYAK_USER"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "subject",
			Aliases:     []string{"s"},
			Usage:       "Subject hint applied to every question",
			Sources:     cli.EnvVars("SAHAYAK_SUBJECT"),
			Destination: &subject,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive question session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			uc, repo, err := cfg.newResolver(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					if len(line) == 0 {
						break
					}
					continue
				} else if err == io.EOF {
					break
				}

				question := strings.TrimSpace(line)
				if question == "" {
					continue
				}
				if question == "exit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
					spinner.WithWriter(os.Stderr))
				sp.Suffix = " thinking..."
				sp.Start()

				ans, err := uc.Resolve(ctx, resolve.Input{
					UserID:   userID,
					Question: question,
					Subject:  model.NormalizeSubject(subject),
				})
				sp.Stop()
				if err != nil {
					// Only contract violations reach here; the session survives
					logging.From(ctx).Error("failed to resolve question", "error", err)
					continue
				}

				printAnswer(c.Root().Writer, ans)
				fmt.Fprintf(c.Root().Writer, "\n")
			}

			fmt.Fprintf(c.Root().Writer, "Chat session completed\n")
			return nil
		},
	}
}
