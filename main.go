package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var storeBackend string

	root := &cobra.Command{
		Use:          "lexora",
		Short:        "LEXORA commission tracking backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), storeBackend)
		},
	}
	root.PersistentFlags().StringVar(&storeBackend, "store", "", "override STORE_BACKEND (memory, mongo, firestore)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), storeBackend)
		},
	})

	var password string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo referral chain from Admin down to Salesman",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), storeBackend, password)
		},
	}
	seed.Flags().StringVar(&password, "password", "lexora-demo", "password for every seeded account")
	root.AddCommand(seed)

	return root
}
