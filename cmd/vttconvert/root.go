package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	encoding string
	out      string
	server   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "vttconvert <url|file>",
		Short:         "Convert a subtitle to WebVTT",
		Long:          "Fetches or reads a subtitle, detects its text encoding and writes it out as WebVTT.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "", "Address of a running vttbridge gRPC server (host:port)")
	rootCmd.Flags().StringVarP(&opts.encoding, "encoding", "e", "", "Encoding to try right after UTF-8 (e.g. gbk, big5)")
	rootCmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write WebVTT to this file instead of stdout")

	rootCmd.AddCommand(newClearCacheCommand(opts))

	return rootCmd
}
