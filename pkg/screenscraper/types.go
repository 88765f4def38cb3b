// Package screenscraper provides a client for the ScreenScraper game database API v2.
package screenscraper

// GameInfo is the normalized metadata for a single game.
// Empty strings mean the catalog did not provide the field.
type GameInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`      // us, then jp, then first
	Synopsis    string   `json:"synopsis"`  // en, then first
	Publisher   string   `json:"publisher"`
	Developer   string   `json:"developer"`
	Players     string   `json:"players"`
	Rating      string   `json:"rating"`
	ReleaseDate string   `json:"release_date"` // us, then jp, then first
	Genres      []string `json:"genres"`
	Media       MediaSet `json:"media"`
}

// MediaSet holds one URL per media kind.
type MediaSet struct {
	Screenshot   string `json:"screenshot,omitempty"`
	Fanart       string `json:"fanart,omitempty"`
	Video        string `json:"video,omitempty"`
	Marquee      string `json:"marquee,omitempty"`
	WheelUS      string `json:"wheel_us,omitempty"`
	WheelJP      string `json:"wheel_jp,omitempty"`
	BoxTextureUS string `json:"box_texture_us,omitempty"`
	BoxTextureJP string `json:"box_texture_jp,omitempty"`
	Box2DUS      string `json:"box_2d_us,omitempty"`
	Box2DJP      string `json:"box_2d_jp,omitempty"`
	Box3DUS      string `json:"box_3d_us,omitempty"`
	Box3DJP      string `json:"box_3d_jp,omitempty"`

	// Icon0URL is the art used for the package icon: US 2D box, else JP.
	Icon0URL string `json:"icon0_url,omitempty"`
}

// Query identifies a disc image to look up.
// Checksums are optional; empty values are not sent.
type Query struct {
	FileName string
	Size     int64
	CRC32    string
	MD5      string
	SHA1     string
}

// dataResponse is the jeuInfos.php XML document. The root element name varies
// (usually <Data>), so only its children are mapped.
type dataResponse struct {
	Game *gameElement `xml:"jeu"`
}

type gameElement struct {
	ID        string         `xml:"id,attr"`
	Names     []taggedValue  `xml:"noms>nom"`
	Synopses  []taggedValue  `xml:"synopsis>synopsis"`
	Publisher string         `xml:"editeur"`
	Developer string         `xml:"developpeur"`
	Players   string         `xml:"joueurs"`
	Rating    string         `xml:"note"`
	Dates     []taggedValue  `xml:"dates>date"`
	Genres    []taggedValue  `xml:"genres>genre"`
	Media     []mediaElement `xml:"medias>media"`
}

type taggedValue struct {
	Region   string `xml:"region,attr"`
	Language string `xml:"langue,attr"`
	Value    string `xml:",chardata"`
}

type mediaElement struct {
	Type   string `xml:"type,attr"`
	Region string `xml:"region,attr"`
	URL    string `xml:",chardata"`
}
