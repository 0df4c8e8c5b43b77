package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/vidyalab/sahayak/pkg/utils/logging"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "sahayak",
		Usage: "Answer resolution engine for Class 12 tutoring",
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			memoryCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
