package cmd

import (
	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/armadaproject/optimisation/internal/minimise"
)

// RootCmd is the root of the minimise command hierarchy.
func RootCmd() *cobra.Command {
	a := minimise.New()

	cmd := &cobra.Command{
		Use:   "minimise",
		Short: "Run the optimisation drivers on built-in test problems.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, a.Params)
		},
	}
	cmd.PersistentFlags().String("config", "", "config file with parameter defaults")
	cmd.PersistentFlags().StringVar(&a.Params.Problem, "problem", a.Params.Problem,
		"test problem to minimise; one of quadratic, rosenbrock")
	cmd.PersistentFlags().IntVar(&a.Params.MaxIterations, "max-iterations", a.Params.MaxIterations,
		"iteration cap")
	cmd.PersistentFlags().BoolVar(&a.Params.Verbose, "verbose", a.Params.Verbose,
		"print a per-iteration table")

	cmd.AddCommand(sqpCmd(a), gdCmd(a), lbfgsCmd(a))
	return cmd
}

// loadConfig populates params from the config file named by the --config
// flag, if any.
func loadConfig(cmd *cobra.Command, params *minimise.Params) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	if err := v.Unmarshal(params); err != nil {
		return err
	}
	log.Infof("loaded parameters from %s", path)
	return nil
}

func Execute() error {
	return RootCmd().Execute()
}
