package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	grpcserver "github.com/Belphemur/vttbridge/internal/grpc"
)

func newClearCacheCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop every cached subtitle on a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.server == "" {
				return errors.New("clear-cache needs --server")
			}

			conn, svc, err := dialServer(opts.server)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if _, err := svc.ClearCache(ctx, &emptypb.Empty{}); err != nil {
				return fmt.Errorf("clear cache on %s: %w", opts.server, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared subtitle cache on %s\n", opts.server)
			return nil
		},
	}
}

func dialServer(address string) (*grpc.ClientConn, grpcserver.SubtitleServiceClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", address, err)
	}
	return conn, grpcserver.NewSubtitleServiceClient(conn), nil
}
