package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/optimisation/internal/minimise"
)

func sqpCmd(a *minimise.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqp",
		Short: "Minimise with the batched Newton (SQP) driver.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Sqp()
		},
	}
	cmd.Flags().Float64Var(&a.Params.Reg0, "reg0", a.Params.Reg0,
		"initial Hessian regularisation")
	cmd.Flags().IntVar(&a.Params.LineSearchPoints, "ls-points", a.Params.LineSearchPoints,
		"number of line-search candidates per iteration")
	cmd.Flags().BoolVar(&a.Params.ForceStep, "force-step", a.Params.ForceStep,
		"take a non-zero step even if it worsens the loss")
	cmd.Flags().Float64SliceVar(&a.Params.Centres, "centres", a.Params.Centres,
		"centres of the batched quadratic bowls")
	return cmd
}

func gdCmd(a *minimise.App) *cobra.Command {
	return &cobra.Command{
		Use:   "gd",
		Short: "Minimise with the first-order (Adam) driver.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Gd()
		},
	}
}

func lbfgsCmd(a *minimise.App) *cobra.Command {
	return &cobra.Command{
		Use:   "lbfgs",
		Short: "Minimise the Rosenbrock problem with gonum's L-BFGS.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Lbfgs()
		},
	}
}
