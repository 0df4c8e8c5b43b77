package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/usecase/resolve"
)

func askCommand() *cli.Command {
	var (
		cfg      config
		userID   string
		question string
		subject  string
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
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "Question to resolve",
			Destination: &question,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "subject",
			Aliases:     []string{"s"},
			Usage:       "Subject hint (mathematics, physics, chemistry, biology)",
			Sources:     cli.EnvVars("SAHAYAK_SUBJECT"),
			Destination: &subject,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "ask",
		Usage: "Resolve a single question",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			uc, repo, err := cfg.newResolver(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

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
				return err
			}

			printAnswer(c.Root().Writer, ans)
			return nil
		},
	}
}

// printAnswer writes the answer followed by its provenance and sources
func printAnswer(w io.Writer, ans *model.ResolvedAnswer) {
	fmt.Fprintf(w, "%s\n", ans.Content)
	fmt.Fprintf(w, "\n[%s, confidence %.2f]\n", ans.Provenance, ans.Confidence)

	if len(ans.Sources) == 0 {
		return
	}
	fmt.Fprintf(w, "Sources:\n")
	for _, s := range ans.Sources {
		fmt.Fprintf(w, "  - %s", s.ID)
		if s.Chapter != "" {
			fmt.Fprintf(w, " (%s, chapter %s)", s.Subject, s.Chapter)
		}
		fmt.Fprintf(w, "\n")
	}
}
