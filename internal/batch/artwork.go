package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/vmunix/psxpack/pkg/screenscraper"
	"github.com/vmunix/psxpack/pkg/title"
)

// artworkResult is what the artwork stages produced for one job. The zero
// value means the job converts with the default resource settings.
type artworkResult struct {
	staged bool
	root   string
}

// resolveArtwork runs hashing, lookup, download and staging. Any failure is
// recorded on the job and degrades to the zero result; the only error
// returned is the cancellation cause.
func (p *Pool) resolveArtwork(ctx context.Context, job ConvertJob, source string) (artworkResult, error) {
	var none artworkResult

	if c, ok := p.deps.Metadata.(configured); ok && !c.Configured() {
		p.tracker.degrade(job, StageLookup, "ScreenScraper credentials not configured", screenscraper.ErrMissingCredentials)
		return none, nil
	}

	// Hashing
	if err := ctx.Err(); err != nil {
		return none, err
	}
	size := ""
	if fi, err := os.Stat(source); err == nil {
		size = " (" + humanize.IBytes(uint64(fi.Size())) + ")"
	}
	p.tracker.stage(job, StageHashing, "Calculating file hashes"+size+"...")
	sums, err := p.deps.Hash(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return none, ctx.Err()
		}
		p.tracker.degrade(job, StageHashing, "Could not hash file", err)
		return none, nil
	}

	// Lookup
	if err := ctx.Err(); err != nil {
		return none, err
	}
	p.tracker.stage(job, StageLookup, "Searching ScreenScraper database...")
	info, err := p.deps.Metadata.Lookup(ctx, screenscraper.Query{
		FileName: source,
		Size:     sums.Size,
		CRC32:    sums.CRC32,
		MD5:      sums.MD5,
		SHA1:     sums.SHA1,
	})
	if err != nil {
		if ctx.Err() != nil {
			return none, ctx.Err()
		}
		if errors.Is(err, screenscraper.ErrMissingCredentials) {
			p.tracker.degrade(job, StageLookup, "ScreenScraper credentials not configured", err)
		} else {
			p.tracker.degrade(job, StageLookup, "ScreenScraper error: "+err.Error(), err)
		}
		return none, nil
	}
	if info == nil {
		p.tracker.degrade(job, StageLookup, "Game not found on ScreenScraper", nil)
		return none, nil
	}

	p.tracker.matched(job, info.ID, info.Name)
	match := title.Compare(filepath.Base(job.Path), info.Name)
	p.tracker.stage(job, StageLookup, fmt.Sprintf("Found: %s (%s match)", info.Name, match.Confidence))

	if info.Media.Icon0URL == "" {
		p.tracker.degrade(job, StageLookup, "No artwork found on ScreenScraper", nil)
		return none, nil
	}

	// Download
	if err := ctx.Err(); err != nil {
		return none, err
	}
	p.tracker.stage(job, StageDownload, "Downloading artwork...")
	data, err := p.deps.Artwork.Fetch(ctx, info.Media.Icon0URL)
	if err != nil {
		if ctx.Err() != nil {
			return none, ctx.Err()
		}
		p.tracker.degrade(job, StageDownload, "Artwork download failed", err)
		return none, nil
	}
	iconPath, err := p.deps.Artwork.Store(info.ID, data)
	if err != nil {
		p.tracker.degrade(job, StageDownload, "Could not cache artwork", err)
		return none, nil
	}
	p.tracker.stage(job, StageDownload, "Artwork downloaded: "+filepath.Base(iconPath))

	// Staging
	if err := ctx.Err(); err != nil {
		return none, err
	}
	p.tracker.stage(job, StageStaging, "Preparing artwork resources...")
	root, err := p.deps.Artwork.Stage(iconPath, stagingKey(p.id, job.ID), job.Path)
	if err != nil {
		p.tracker.degrade(job, StageStaging, "Artwork staging failed, using default resources", err)
		return none, nil
	}

	return artworkResult{staged: true, root: root}, nil
}

// stagingKey names a job's private resource root. Batch ids keep concurrent
// runs sharing one cache apart.
func stagingKey(batchID string, jobID int64) string {
	return fmt.Sprintf("%s-%d", batchID, jobID)
}
