package batch

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmunix/psxpack/internal/convert"
	"github.com/vmunix/psxpack/internal/events"
	"github.com/vmunix/psxpack/pkg/checksum"
	"github.com/vmunix/psxpack/pkg/screenscraper"
)

const (
	// DefaultWorkers is the pool size used when Settings.Workers is unset.
	DefaultWorkers = 4

	// StagedResourceFormat is the resource template used for staged artwork:
	// <ResourceRoot>/<file name>/ICON0.png.
	StagedResourceFormat = "%FILENAME%/%RESOURCE%.%EXT%"
)

// Settings is the configuration for one batch run. It is read once at
// construction.
type Settings struct {
	Workers    int
	InputPath  string
	OutputPath string
	TempPath   string

	Discs                   []int
	FileNameFormat          string
	CompressionLevel        int
	ExtractResources        bool
	GenerateResourceFolders bool

	// User resource settings, used when no artwork is staged for a job.
	UseCustomResources    bool
	CustomResourcesPath   string
	CustomResourcesFormat string

	// Artwork enables the hash/lookup/download/staging stages.
	Artwork bool
}

func (s Settings) withDefaults() Settings {
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	if s.TempPath == "" {
		s.TempPath = filepath.Join(os.TempDir(), "PSXPackager")
	}
	if len(s.Discs) == 0 {
		s.Discs = []int{1, 2, 3, 4, 5}
	}
	return s
}

// baseOptions are the packer options before any artwork is applied.
func (s Settings) baseOptions() convert.Options {
	return convert.Options{
		OutputPath:              s.OutputPath,
		TempPath:                s.TempPath,
		Discs:                   slices.Clone(s.Discs),
		FileNameFormat:          s.FileNameFormat,
		CompressionLevel:        s.CompressionLevel,
		ExtractResources:        s.ExtractResources,
		GenerateResourceFolders: s.GenerateResourceFolders,
		ImportResources:         s.UseCustomResources,
		ResourceFormat:          s.CustomResourcesFormat,
		ResourceRoot:            s.CustomResourcesPath,
	}
}

// withArtwork points the packer at artwork staged under root.
func withArtwork(opts convert.Options, root string) convert.Options {
	opts.ImportResources = true
	opts.ResourceRoot = root
	opts.ResourceFormat = StagedResourceFormat
	return opts
}

// MetadataLookup resolves a disc image to catalog metadata.
// A nil result with a nil error means the catalog has no match.
type MetadataLookup interface {
	Lookup(ctx context.Context, q screenscraper.Query) (*screenscraper.GameInfo, error)
}

// ArtworkStore downloads artwork and prepares it for the packer. Stage
// returns a resource root private to key; Unstage removes it once the job
// has converted.
type ArtworkStore interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Store(catalogID string, data []byte) (string, error)
	Stage(iconPath, key, relativePath string) (string, error)
	Unstage(root string) error
}

// HashFunc computes the checksums of a file.
type HashFunc func(ctx context.Context, path string) (checksum.Sums, error)

// Deps are the collaborators a pool calls into.
type Deps struct {
	Converter convert.Converter // required
	Metadata  MetadataLookup    // nil disables artwork
	Artwork   ArtworkStore      // nil disables artwork
	Hash      HashFunc          // defaults to checksum.File
	Bus       *events.Bus       // optional status sink
}

// configured is implemented by lookups that can tell up front whether
// credentials are present.
type configured interface {
	Configured() bool
}
