// Package convert defines the boundary to the disc image packer that produces
// the final artifact for each job.
package convert

//go:generate mockgen -source=convert.go -destination=mocks/mock_converter.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultResourceFormat is the path template, relative to ResourceRoot, the
// packer uses to find custom resources for a file.
const DefaultResourceFormat = "%FILENAME%/%RESOURCE%.%EXT%"

// Options is the fully resolved configuration for converting one file.
type Options struct {
	OutputPath              string
	TempPath                string
	Discs                   []int
	FileNameFormat          string
	CompressionLevel        int
	ExtractResources        bool
	ImportResources         bool
	GenerateResourceFolders bool
	ResourceFormat          string
	ResourceRoot            string
}

// Converter produces the artifact for a single source file.
type Converter interface {
	Convert(ctx context.Context, sourcePath string, opts Options) error
}

// Args renders opts as command line flags for an external packer.
func (o Options) Args(sourcePath string) []string {
	args := []string{
		"--input", sourcePath,
		"--output", o.OutputPath,
		"--level", strconv.Itoa(o.CompressionLevel),
	}
	if o.TempPath != "" {
		args = append(args, "--temp", o.TempPath)
	}
	if len(o.Discs) > 0 {
		discs := make([]string, len(o.Discs))
		for i, d := range o.Discs {
			discs[i] = strconv.Itoa(d)
		}
		args = append(args, "--discs", strings.Join(discs, ","))
	}
	if o.FileNameFormat != "" {
		args = append(args, "--filename-format", o.FileNameFormat)
	}
	if o.ExtractResources {
		args = append(args, "--extract-resources")
	}
	if o.GenerateResourceFolders {
		args = append(args, "--generate-resource-folders")
	}
	if o.ImportResources {
		args = append(args, "--import-resources",
			"--resource-root", o.ResourceRoot,
			"--resource-format", o.ResourceFormat)
	}
	return args
}

// DryRun logs the conversion it would perform and succeeds.
type DryRun struct {
	log *slog.Logger
}

// NewDryRun creates a converter that only logs.
func NewDryRun(log *slog.Logger) *DryRun {
	if log == nil {
		log = slog.Default()
	}
	return &DryRun{log: log.With("component", "dry-run")}
}

func (d *DryRun) Convert(ctx context.Context, sourcePath string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.Info("would convert", "source", sourcePath, "args", fmt.Sprint(opts.Args(sourcePath)))
	return nil
}
