// Command psxpack converts PlayStation disc images in bulk, pulling cover art
// from ScreenScraper for each game before handing it to the packer.
package main

func main() {
	Execute()
}
