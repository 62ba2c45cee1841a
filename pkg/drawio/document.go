package drawio

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/flate"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// Element and attribute names used in draw.io documents.
const (
	TagDiagram    = "diagram"
	TagRoot       = "root"
	TagCell       = "mxCell"
	TagObject     = "object"
	TagGeometry   = "mxGeometry"
	TagGraphModel = "mxGraphModel"

	AttrName  = "name"
	AttrID    = "id"
	AttrValue = "value"
	AttrLabel = "label"
)

const xmlDeclaration = `version="1.0" encoding="UTF-8"`

// Document is a parsed draw.io file.
type Document struct {
	doc *etree.Document
}

// Parse reads a draw.io document. Compressed pages are inflated.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "parse draw.io document")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidTemplate, "draw.io document has no root element")
	}
	d := &Document{doc: doc}
	for _, page := range d.Pages() {
		if err := inflate(page); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err,
				"inflate page %q", page.SelectAttrValue(AttrName, ""))
		}
	}
	return d, nil
}

// Read parses a draw.io document from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Copy returns a deep copy sharing nothing with d.
func (d *Document) Copy() *Document {
	return &Document{doc: d.doc.Copy()}
}

// Root returns the <mxfile> element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Pages returns every <diagram> element in document order.
func (d *Document) Pages() []*etree.Element {
	return d.Root().FindElements(".//" + TagDiagram)
}

// PageNames returns the name of every page in document order.
func (d *Document) PageNames() []string {
	pages := d.Pages()
	names := make([]string, 0, len(pages))
	for _, p := range pages {
		names = append(names, p.SelectAttrValue(AttrName, ""))
	}
	return names
}

// AppendPage adds page as the last child of the <mxfile> element.
func (d *Document) AppendPage(page *etree.Element) {
	d.Root().AddChild(page)
}

// RemovePage detaches page from its parent.
func (d *Document) RemovePage(page *etree.Element) {
	if parent := page.Parent(); parent != nil {
		parent.RemoveChild(page)
	}
}

// Bytes serializes the document, adding an XML declaration when the source
// had none.
func (d *Document) Bytes() ([]byte, error) {
	out := d.doc.Copy()
	if !hasDeclaration(out) {
		out.InsertChildAt(0, etree.NewProcInst("xml", xmlDeclaration))
		out.InsertChildAt(1, etree.NewText("\n"))
	}
	return out.WriteToBytes()
}

func hasDeclaration(doc *etree.Document) bool {
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.ProcInst:
			return t.Target == "xml"
		case *etree.CharData:
			continue
		default:
			return false
		}
	}
	return false
}

// inflate replaces a compressed page body with its decoded graph model.
// Pages that already hold elements are left alone.
func inflate(page *etree.Element) error {
	if len(page.ChildElements()) > 0 {
		return nil
	}
	text := strings.TrimSpace(page.Text())
	if text == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return err
	}
	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	inflated, err := io.ReadAll(fr)
	if err != nil {
		return err
	}
	model, err := url.PathUnescape(string(inflated))
	if err != nil {
		return err
	}

	frag := etree.NewDocument()
	if err := frag.ReadFromString(model); err != nil {
		return err
	}
	if frag.Root() == nil {
		return errors.New(errors.ErrCodeInvalidTemplate, "compressed page holds no graph model")
	}
	page.SetText("")
	page.AddChild(frag.Root().Copy())
	return nil
}
