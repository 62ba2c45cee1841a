package assemble

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/ioschema/pkg/allocate"
	"github.com/matzehuels/ioschema/pkg/drawio"
	"github.com/matzehuels/ioschema/pkg/errors"
)

const glyphStyle = "shape=image;verticalLabelPosition=bottom;labelBackgroundColor=default;" +
	"verticalAlign=top;aspect=fixed;imageAspect=0;image=data:image/svg+xml,"

// buildOverviews appends one overview page per distinct controller.
func (a *Assembler) buildOverviews(ctx context.Context, doc *drawio.Document, index map[string]*etree.Element, modules []allocate.ModuleInstance, report *Report) error {
	seen := make(map[string]bool)
	for _, inst := range modules {
		if !inst.Spec.IsController() || seen[inst.Spec.ID] {
			continue
		}
		seen[inst.Spec.ID] = true

		name := a.opts.OverviewPrefix + inst.Spec.ID
		tmpl, ok := index[name]
		if !ok {
			report.Warnings.Add(errors.NewWarning(errors.ErrCodeMissingTemplatePage, name,
				"overview page %q not found", name))
			a.opts.Logger.Warn("overview page not found", "page", name)
			continue
		}

		page := tmpl.Copy()
		page.CreateAttr(drawio.AttrName, name)
		page.CreateAttr(drawio.AttrID, "page_Synoptique_"+inst.Spec.ID+a.opts.KeepSuffix)
		if err := a.placeGlyphs(ctx, page, modules, report); err != nil {
			return err
		}
		doc.AppendPage(page)
		a.opts.Logger.Debug("built overview page", "page", name, "glyphs", report.Glyphs)
	}
	return nil
}

// placeGlyphs draws each card's image in the next free slot of the
// overview page. Cards without an image are skipped; cards beyond the last
// slot are dropped with a warning.
func (a *Assembler) placeGlyphs(ctx context.Context, page *etree.Element, modules []allocate.ModuleInstance, report *Report) error {
	if a.opts.Glyphs == nil {
		return nil
	}
	root := page.FindElement(".//" + drawio.TagRoot)
	if root == nil {
		report.Warnings.Add(errors.NewWarning(errors.ErrCodeInvalidTemplate, page.SelectAttrValue(drawio.AttrName, ""),
			"overview page has no <root> element, card images not drawn"))
		return nil
	}

	layout := a.opts.Overview
	slot, dropped := 0, 0
	for _, inst := range modules {
		if !inst.Spec.IsCard() {
			continue
		}
		raw, err := a.opts.Glyphs.Glyph(ctx, inst.Spec.ID)
		if err != nil {
			return fmt.Errorf("glyph %s: %w", inst.Spec.ID, err)
		}
		glyph := cleanGlyph(raw)
		if glyph == "" {
			a.opts.Logger.Debug("card has no overview image", "module", inst.Spec.ID)
			continue
		}
		if slot >= len(layout.X) {
			dropped++
			continue
		}

		x := layout.X[slot]
		slot++
		root.AddChild(glyphElement(inst.Spec.ID, glyph, x, layout))
		report.Glyphs++
	}

	if dropped > 0 {
		report.Warnings.Add(errors.NewWarning(errors.ErrCodeOverviewSlots, page.SelectAttrValue(drawio.AttrName, ""),
			"%d card images not drawn: overview has %d slots", dropped, len(layout.X)))
		a.opts.Logger.Warn("overview slots exhausted", "dropped", dropped, "slots", len(layout.X))
	}
	return nil
}

func cleanGlyph(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// glyphElement builds
//
//	<object label="" id="<id><x>">
//	  <mxCell style="...image=data:image/svg+xml,<glyph>" vertex="1" parent="1">
//	    <mxGeometry x y width height as="geometry"/>
//	  </mxCell>
//	</object>
func glyphElement(id, glyph string, x float64, layout OverviewLayout) *etree.Element {
	obj := etree.NewElement(drawio.TagObject)
	obj.CreateAttr(drawio.AttrLabel, "")
	obj.CreateAttr(drawio.AttrID, id+formatCoord(x))

	cell := obj.CreateElement(drawio.TagCell)
	cell.CreateAttr("style", glyphStyle+glyph)
	cell.CreateAttr("vertex", "1")
	cell.CreateAttr("parent", "1")

	geo := cell.CreateElement(drawio.TagGeometry)
	geo.CreateAttr("x", formatCoord(x))
	geo.CreateAttr("y", formatCoord(layout.Y))
	geo.CreateAttr("width", formatCoord(layout.Width))
	geo.CreateAttr("height", formatCoord(layout.Height))
	geo.CreateAttr("as", "geometry")
	return obj
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
