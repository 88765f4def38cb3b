package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/pkg/checksum"
	"github.com/vmunix/psxpack/pkg/screenscraper"
	"github.com/vmunix/psxpack/pkg/title"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <file>",
	Short: "Look a disc image up on ScreenScraper",
	Long:  "Hashes the file and queries ScreenScraper, using the local metadata cache when it has a fresh entry.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

// lookupResult is the JSON form of a lookup.
type lookupResult struct {
	File       string                  `json:"file"`
	Sums       checksum.Sums           `json:"checksums"`
	Game       *screenscraper.GameInfo `json:"game"`
	Confidence string                  `json:"confidence,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	path := args[0]
	ctx := cmd.Context()

	start := time.Now()
	sums, err := checksum.File(ctx, path)
	if err != nil {
		return err
	}
	logDuration(a.log, "hashed file", start, "path", path)

	start = time.Now()
	info, err := a.metadata().Lookup(ctx, screenscraper.Query{
		FileName: path,
		Size:     sums.Size,
		CRC32:    sums.CRC32,
		MD5:      sums.MD5,
		SHA1:     sums.SHA1,
	})
	if err != nil {
		return err
	}
	logDuration(a.log, "looked up game", start, "path", path)

	result := lookupResult{File: path, Sums: sums, Game: info}
	if info != nil {
		result.Confidence = title.Compare(filepath.Base(path), info.Name).Confidence.String()
	}

	if jsonOutput {
		printJSON(result)
		return nil
	}

	if info == nil {
		fmt.Println("No match on ScreenScraper")
		return nil
	}

	fmt.Printf("Game:       %s (id %s, %s match)\n", info.Name, info.ID, result.Confidence)
	printField("Released", info.ReleaseDate)
	printField("Publisher", info.Publisher)
	printField("Developer", info.Developer)
	printField("Players", info.Players)
	printField("Rating", info.Rating)
	printField("Genres", strings.Join(info.Genres, ", "))
	printField("Icon", info.Media.Icon0URL)
	if info.Synopsis != "" {
		fmt.Printf("\n%s\n", info.Synopsis)
	}
	return nil
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-11s %s\n", label+":", value)
}
