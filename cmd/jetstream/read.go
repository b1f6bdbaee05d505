package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shapestone/jetstream/pkg/jetstream"
	"github.com/shapestone/jetstream/pkg/stream"
)

var (
	pathFlag       string
	bufferSizeFlag int
	maxDepthFlag   int
	configFlag     string
	streamFlag     bool
	prettyFlag     bool
	statsFlag      bool

	readCmd = &cobra.Command{
		Use:   "read [file...]",
		Short: "Read JSON documents, optionally filtered by a path expression",
		Long: `Read parses one or more JSON documents and prints the result.
With --path only the matching values are printed. With --stream each
top-level item is printed on its own line as it is parsed. Use "-" to
read from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRead,
	}
)

func init() {
	readCmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Path expression, e.g. '$.items[*].id'")
	readCmd.Flags().IntVar(&bufferSizeFlag, "buffer-size", 0, "Read buffer size in bytes (1024..1048576)")
	readCmd.Flags().IntVar(&maxDepthFlag, "max-depth", 0, "Maximum nesting depth (1..4096)")
	readCmd.Flags().StringVar(&configFlag, "config", "", "YAML options file")
	readCmd.Flags().BoolVar(&streamFlag, "stream", false, "Print each top-level item on its own line")
	readCmd.Flags().BoolVar(&prettyFlag, "pretty", false, "Indent the output")
	readCmd.Flags().BoolVar(&statsFlag, "stats", false, "Log reader statistics after each file")
	rootCmd.AddCommand(readCmd)
}

// buildOptions merges the config file with the command line flags;
// flags win.
func buildOptions() (stream.Options, error) {
	opts := stream.DefaultOptions()
	if configFlag != "" {
		loaded, err := stream.LoadOptions(configFlag)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}
	if bufferSizeFlag > 0 {
		opts = opts.WithBufferSize(bufferSizeFlag)
	}
	if maxDepthFlag > 0 {
		opts = opts.WithMaxDepth(maxDepthFlag)
	}
	if pathFlag != "" {
		opts = opts.WithPath(pathFlag)
	}
	return opts, opts.Validate()
}

func runRead(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		slog.Error("invalid options", "error", err)
		return err
	}

	// Parse every file concurrently, then print in argument order so
	// the output stays deterministic.
	outputs := make([]string, len(args))
	var group errgroup.Group

	for i, name := range args {
		i, name := i, name
		group.Go(func() error {
			out, err := readOne(name, opts)
			if err != nil {
				slog.Error("read failed", "file", name, "error", err)
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, out := range outputs {
		fmt.Print(out)
	}
	return nil
}

// readOne parses a single document and renders its output.
func readOne(name string, opts stream.Options) (string, error) {
	var reader *jetstream.Reader
	var err error
	if name == "-" {
		reader, err = jetstream.FromReader(os.Stdin)
		if err == nil {
			reader, err = reconfigure(reader, opts)
		}
	} else {
		reader, err = jetstream.FromFileOptions(name, opts)
	}
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var sb strings.Builder
	if streamFlag {
		err = renderStream(reader, &sb)
	} else {
		err = renderAll(reader, &sb)
	}
	if err != nil {
		return "", err
	}

	if statsFlag {
		stats := reader.Stats()
		slog.Info("reader statistics",
			"file", name,
			"reader", stats.ReaderID,
			"items", stats.ItemsProcessed,
			"bytes", stats.BytesRead)
	}
	return sb.String(), nil
}

// reconfigure applies options to a stdin-backed reader.
func reconfigure(r *jetstream.Reader, opts stream.Options) (*jetstream.Reader, error) {
	next, err := r.WithBufferSize(opts.BufferSize)
	if err != nil {
		return nil, err
	}
	next, err = next.WithMaxDepth(opts.MaxDepth)
	if err != nil {
		return nil, err
	}
	if opts.Path != "" {
		return next.WithPath(opts.Path)
	}
	return next, nil
}

// renderAll materializes the document (or its path matches) in full.
func renderAll(reader *jetstream.Reader, sb *strings.Builder) error {
	v, err := reader.ReadAll()
	if err != nil {
		return err
	}
	return writeJSON(sb, v.Interface())
}

// renderStream prints one line per top-level item as it is parsed.
func renderStream(reader *jetstream.Reader, sb *strings.Builder) error {
	items := reader.ReadItems()
	for items.Next() {
		line := map[string]interface{}{
			"index": items.Index(),
			"type":  items.TypeName(),
			"value": items.Value().Interface(),
		}
		if key := items.Key(); key != "" {
			line["key"] = key
		}
		encoded, err := json.Marshal(line)
		if err != nil {
			return err
		}
		sb.Write(encoded)
		sb.WriteByte('\n')
	}
	return items.Err()
}

// writeJSON renders a plain Go value as JSON, indented when requested.
func writeJSON(sb *strings.Builder, v interface{}) error {
	var encoded []byte
	var err error
	if prettyFlag {
		encoded, err = json.MarshalIndent(v, "", "  ")
	} else {
		encoded, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	sb.Write(encoded)
	sb.WriteByte('\n')
	return nil
}
