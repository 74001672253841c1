package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Belphemur/vttbridge/internal/cache"
	"github.com/Belphemur/vttbridge/internal/client"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/models"
	"github.com/Belphemur/vttbridge/internal/parser"
	"github.com/Belphemur/vttbridge/internal/services"
)

func runConvert(cmd *cobra.Command, opts *rootOptions, source string) error {
	var (
		doc *models.ConvertedDocument
		err error
	)
	if opts.server != "" {
		doc, err = convertRemote(cmd.Context(), opts.server, source)
	} else {
		doc, err = convertLocal(cmd.Context(), opts.encoding, source)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), opts.out, doc.Text); err != nil {
		return err
	}

	if opts.out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s to %s", humanize.Bytes(uint64(len(doc.Text))), opts.out)
		if doc.DroppedBlocks > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), " (%d malformed blocks dropped)", doc.DroppedBlocks)
		}
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return nil
}

// convertLocal runs the pipeline in-process with a single-entry cache.
func convertLocal(ctx context.Context, encoding, source string) (*models.ConvertedDocument, error) {
	cfg := config.GetConfig()
	if encoding == "" && cfg != nil {
		encoding = cfg.Decoder.DefaultEncoding
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	c, err := cache.New("memory", cache.ProviderConfig{Size: 1})
	if err != nil {
		return nil, err
	}

	fetcher := &sourceFetcher{remote: client.NewClient(cfg)}
	defer fetcher.remote.Close()

	pipeline := services.NewSubtitlePipeline(
		fetcher,
		parser.NewSubtitleDecoder(parser.DecodeOptions{DefaultEncoding: encoding}),
		services.NewSubtitleConverter(),
		c,
	)
	defer pipeline.Close()

	return pipeline.GetSubtitle(ctx, source)
}

func convertRemote(ctx context.Context, address, source string) (*models.ConvertedDocument, error) {
	if !isRemoteSource(source) {
		return nil, fmt.Errorf("--server only accepts http(s) sources, got %q", source)
	}

	conn, svc, err := dialServer(address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	resp, err := svc.GetSubtitle(ctx, wrapperspb.String(source))
	if err != nil {
		return nil, fmt.Errorf("get subtitle from %s: %w", address, err)
	}
	return &models.ConvertedDocument{Text: resp.GetValue()}, nil
}

func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isRemoteSource(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// sourceFetcher reads local files directly and hands URLs to the HTTP client.
type sourceFetcher struct {
	remote client.Client
}

func (f *sourceFetcher) FetchSubtitle(ctx context.Context, sourceID string) (*models.RawSubtitle, error) {
	if isRemoteSource(sourceID) {
		return f.remote.FetchSubtitle(ctx, sourceID)
	}

	content, err := os.ReadFile(sourceID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file does not exist: %s", sourceID)
		}
		return nil, fmt.Errorf("read subtitle: %w", err)
	}
	return &models.RawSubtitle{
		SourceID: sourceID,
		Filename: filepath.Base(sourceID),
		Content:  content,
	}, nil
}
