package main

import (
	"context"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/core"
	"github.com/awantoch/visitorcount/utils"
	"github.com/spf13/cobra"
)

type countOutput struct {
	Count int64 `json:"count"`
}

// newVisitCmd creates the 'visit' subcommand.
func newVisitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdVisit,
		Short: constants.DescVisit,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(func(ctx context.Context, deps *core.Dependencies) error {
				ctx = utils.WithRequestID(ctx, utils.NewRequestID())
				n, err := deps.Counter.Visit(ctx)
				if err != nil {
					return err
				}
				return printCount(n)
			})
		},
	}
}

// newShowCmd creates the 'show' subcommand.
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdShow,
		Short: constants.DescShow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(func(ctx context.Context, deps *core.Dependencies) error {
				n, err := deps.Counter.Current(ctx)
				if err != nil {
					return err
				}
				return printCount(n)
			})
		},
	}
}

func withDependencies(fn func(context.Context, *core.Dependencies) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	deps, cleanup, err := core.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, deps)
}

func printCount(n int64) error {
	res := utils.MarshalJSON(countOutput{Count: n})
	if res.Err != nil {
		return res.Err
	}
	utils.User("%s", res.Data)
	return nil
}
