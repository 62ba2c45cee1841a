package assemble

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Tokens are the metadata markers replaced on every attribute of kept pages.
type Tokens struct {
	Author        string `toml:"author"`
	SiteName      string `toml:"site_name"`
	CabinetName   string `toml:"cabinet_name"`
	EditionDate   string `toml:"edition_date"`
	RevisionIndex string `toml:"revision_index"`
}

// DefaultTokens returns the markers used by the stock template.
func DefaultTokens() Tokens {
	return Tokens{
		Author:        "$Auteur$",
		SiteName:      "$Nom du site$",
		CabinetName:   "$Nom armoire$",
		EditionDate:   "$__/__/____$",
		RevisionIndex: "$A$",
	}
}

// pairs returns token/value pairs for strings.NewReplacer, skipping empty tokens.
func (t Tokens) pairs(p ProjectParams) []string {
	all := []string{
		t.Author, p.Author,
		t.SiteName, p.SiteName,
		t.CabinetName, p.CabinetName,
		t.EditionDate, p.EditionDate,
		t.RevisionIndex, p.RevisionIndex,
	}
	out := make([]string, 0, len(all))
	for i := 0; i < len(all); i += 2 {
		if all[i] != "" {
			out = append(out, all[i], all[i+1])
		}
	}
	return out
}

// OverviewLayout positions card images on the overview page.
type OverviewLayout struct {
	X      []float64 `toml:"x"`
	Y      float64   `toml:"y"`
	Width  float64   `toml:"width"`
	Height float64   `toml:"height"`
}

// DefaultOverviewLayout returns the ten slots of the stock overview page.
func DefaultOverviewLayout() OverviewLayout {
	return OverviewLayout{
		X:      []float64{530, 592, 654, 715, 777, 839, 901, 962, 1024, 1086},
		Y:      140,
		Width:  62.14,
		Height: 290,
	}
}

// Defaults for page naming.
const (
	DefaultUnusedMarker   = "Libre"
	DefaultOverviewPrefix = "synoptique_"
	DefaultKeepSuffix     = "_conserv"
)

// GlyphSource returns the overview image of a module.
// catalog.Gateway satisfies it.
type GlyphSource interface {
	Glyph(ctx context.Context, id string) ([]byte, error)
}

// Options configures an Assembler.
type Options struct {
	Tokens         Tokens
	Overview       OverviewLayout
	UnusedMarker   string
	OverviewPrefix string
	KeepSuffix     string

	// Glyphs supplies card images. Without it no images are placed.
	Glyphs GlyphSource
	Logger *log.Logger
	// Now is used for the default edition date.
	Now func() time.Time
}

// SetDefaults fills every zero field.
func (o *Options) SetDefaults() {
	if o.Tokens == (Tokens{}) {
		o.Tokens = DefaultTokens()
	}
	if len(o.Overview.X) == 0 {
		o.Overview = DefaultOverviewLayout()
	}
	if o.UnusedMarker == "" {
		o.UnusedMarker = DefaultUnusedMarker
	}
	if o.OverviewPrefix == "" {
		o.OverviewPrefix = DefaultOverviewPrefix
	}
	if o.KeepSuffix == "" {
		o.KeepSuffix = DefaultKeepSuffix
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
