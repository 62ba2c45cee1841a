package assemble

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/ioschema/pkg/allocate"
	"github.com/matzehuels/ioschema/pkg/drawio"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/points"
)

// Stage is one step of document assembly.
type Stage string

const (
	StageIndexed             Stage = "Indexed"
	StageOverviewBuilt       Stage = "OverviewBuilt"
	StagePagesInstantiated   Stage = "PagesInstantiated"
	StagePruned              Stage = "Pruned"
	StageMetadataSubstituted Stage = "MetadataSubstituted"
	StagePlaceholdersCleared Stage = "PlaceholdersCleared"
	StageSerialized          Stage = "Serialized"
)

// Report describes what an assembly did.
type Report struct {
	// Stages lists the completed stages in order.
	Stages []Stage `json:"stages"`
	// Pages lists the pages of the final document.
	Pages []string `json:"pages"`
	// Warnings lists degraded-output conditions.
	Warnings errors.Warnings `json:"warnings,omitempty"`

	Substituted int `json:"substituted"`
	Cleared     int `json:"cleared"`
	Pruned      int `json:"pruned"`
	Glyphs      int `json:"glyphs"`
}

func (r *Report) advance(s Stage) { r.Stages = append(r.Stages, s) }

// Last returns the most recent completed stage.
func (r *Report) Last() Stage {
	if len(r.Stages) == 0 {
		return ""
	}
	return r.Stages[len(r.Stages)-1]
}

// Assembler turns allocated modules into a diagram. It holds no per-request
// state and is safe for concurrent use.
type Assembler struct {
	opts Options
}

// New creates an Assembler. Zero option fields take their defaults.
func New(opts Options) *Assembler {
	opts.SetDefaults()
	return &Assembler{opts: opts}
}

// Assemble edits doc in place. doc must be a working copy obtained from a
// drawio.Repository; it is never shared with other requests.
func (a *Assembler) Assemble(ctx context.Context, doc *drawio.Document, modules []allocate.ModuleInstance, params ProjectParams) (*Report, error) {
	log := a.opts.Logger
	params = params.WithDefaults(a.opts.Now())
	report := &Report{}

	index := indexPages(doc)
	report.advance(StageIndexed)
	log.Debug("indexed template pages", "pages", len(index))

	if err := a.buildOverviews(ctx, doc, index, modules, report); err != nil {
		return report, err
	}
	report.advance(StageOverviewBuilt)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, inst := range modules {
		a.instantiate(doc, index, inst, report)
	}
	report.advance(StagePagesInstantiated)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Pruned = a.prune(doc)
	report.advance(StagePruned)
	log.Debug("pruned template pages", "removed", report.Pruned)

	substituteMetadata(doc, strings.NewReplacer(a.opts.Tokens.pairs(params)...))
	report.advance(StageMetadataSubstituted)

	report.Cleared = clearPlaceholders(doc.Root(), a.opts.UnusedMarker)
	report.advance(StagePlaceholdersCleared)

	report.Pages = doc.PageNames()
	log.Debug("assembled diagram",
		"pages", len(report.Pages),
		"substituted", report.Substituted,
		"cleared", report.Cleared,
		"glyphs", report.Glyphs)
	return report, nil
}

// Serialize writes the assembled document and records the final stage.
func (a *Assembler) Serialize(doc *drawio.Document, report *Report) ([]byte, error) {
	data, err := doc.Bytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram")
	}
	if report != nil {
		report.advance(StageSerialized)
	}
	return data, nil
}

// indexPages maps page names to template pages. A later page with the same
// name replaces an earlier one.
func indexPages(doc *drawio.Document) map[string]*etree.Element {
	pages := doc.Pages()
	index := make(map[string]*etree.Element, len(pages))
	for _, p := range pages {
		if name := p.SelectAttrValue(drawio.AttrName, ""); name != "" {
			index[name] = p
		}
	}
	return index
}

// instantiate appends a copy of the instance's template page with its
// placeholders filled.
func (a *Assembler) instantiate(doc *drawio.Document, index map[string]*etree.Element, inst allocate.ModuleInstance, report *Report) {
	pageID := inst.Spec.PageID()
	tmpl, ok := index[pageID]
	if !ok {
		report.Warnings.Add(errors.NewWarning(errors.ErrCodeMissingTemplatePage, pageID,
			"template page %q not found, module %s skipped", pageID, inst.Name()))
		a.opts.Logger.Warn("template page not found", "page", pageID, "module", inst.Name())
		return
	}

	page := tmpl.Copy()
	page.CreateAttr(drawio.AttrName, inst.Name())
	page.CreateAttr(drawio.AttrID, "page_"+inst.Name()+a.opts.KeepSuffix)

	n := substitutePoints(page, placeholders(inst.Assigned))
	report.Substituted += n
	doc.AppendPage(page)
	a.opts.Logger.Debug("instantiated page", "page", inst.Name(), "substituted", n)
}

// placeholders maps "$di1$", "$ai3$", ... to the display names of the
// assigned points.
func placeholders(a allocate.Assignment) map[string]string {
	out := make(map[string]string, a.Len())
	for _, t := range points.Allocatable {
		for i, p := range a.Of(t) {
			out["$"+t.Placeholder()+strconv.Itoa(i+1)+"$"] = p.DisplayName()
		}
	}
	return out
}

// substitutePoints replaces mxCell values and object labels that exactly
// match a placeholder. Each node is visited once.
func substitutePoints(page *etree.Element, names map[string]string) int {
	if len(names) == 0 {
		return 0
	}
	n := 0
	replace := func(tag, attr string) {
		for _, el := range page.FindElements(".//" + tag) {
			a := el.SelectAttr(attr)
			if a == nil {
				continue
			}
			if name, ok := names[a.Value]; ok {
				a.Value = name
				n++
			}
		}
	}
	replace(drawio.TagCell, drawio.AttrValue)
	replace(drawio.TagObject, drawio.AttrLabel)
	return n
}

// prune removes every page whose id lacks the keep suffix.
func (a *Assembler) prune(doc *drawio.Document) int {
	n := 0
	for _, p := range doc.Pages() {
		if !strings.HasSuffix(p.SelectAttrValue(drawio.AttrID, ""), a.opts.KeepSuffix) {
			doc.RemovePage(p)
			n++
		}
	}
	return n
}

// substituteMetadata replaces metadata tokens in every attribute of every
// element of the remaining pages.
func substituteMetadata(doc *drawio.Document, r *strings.Replacer) {
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for i := range el.Attr {
			el.Attr[i].Value = r.Replace(el.Attr[i].Value)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	for _, p := range doc.Pages() {
		walk(p)
	}
}

// clearPlaceholders sets mxCell values and object labels still wrapped in
// '$' to marker.
func clearPlaceholders(root *etree.Element, marker string) int {
	n := 0
	reset := func(tag, attr string) {
		for _, el := range root.FindElements(".//" + tag) {
			a := el.SelectAttr(attr)
			if a == nil || !isPlaceholder(a.Value) {
				continue
			}
			a.Value = marker
			n++
		}
	}
	reset(drawio.TagCell, drawio.AttrValue)
	reset(drawio.TagObject, drawio.AttrLabel)
	return n
}

func isPlaceholder(v string) bool {
	return len(v) >= 2 && strings.HasPrefix(v, "$") && strings.HasSuffix(v, "$")
}
