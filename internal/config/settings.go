package config

import (
	"slices"

	"github.com/vmunix/psxpack/internal/batch"
)

// BatchSettings converts the loaded configuration into the settings a
// batch run is constructed with.
func (c *Config) BatchSettings() batch.Settings {
	return batch.Settings{
		Workers:                 c.Batch.Workers,
		InputPath:               c.Batch.InputPath,
		OutputPath:              c.Batch.OutputPath,
		TempPath:                c.Batch.TempPath,
		Discs:                   slices.Clone(c.Conversion.Discs),
		FileNameFormat:          c.Conversion.FileNameFormat,
		CompressionLevel:        c.Conversion.CompressionLevel,
		ExtractResources:        c.Batch.ExtractResources,
		GenerateResourceFolders: c.Batch.GenerateResourceFolders,
		UseCustomResources:      c.Resources.UseCustom,
		CustomResourcesPath:     c.Resources.Path,
		CustomResourcesFormat:   c.Resources.Format,
		Artwork:                 c.ScreenScraper.AutoDownloadArtwork && c.ScreenScraper.UseInBatchMode,
	}
}
