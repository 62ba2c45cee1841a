package drawio

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/matzehuels/ioschema/pkg/errors"
)

const template = `<mxfile host="app.diagrams.net">
  <diagram name="synoptique_automate" id="p0">
    <mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel>
  </diagram>
  <diagram name="s4th_16_di" id="p1">
    <mxGraphModel><root><mxCell id="0"/><mxCell id="c1" value="$di1$" parent="0"/></root></mxGraphModel>
  </diagram>
</mxfile>`

// deflate encodes a graph model the way draw.io stores compressed pages.
func deflate(t *testing.T, model string) string {
	t.Helper()
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(url.PathEscape(model))); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(template))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := doc.PageNames(), []string{"synoptique_automate", "s4th_16_di"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PageNames = %v, want %v", got, want)
	}
	if doc.Root().Tag != "mxfile" {
		t.Errorf("root = %s", doc.Root().Tag)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not xml", "hello"},
		{"broken compressed page", `<mxfile><diagram name="x">!!!not-base64!!!</diagram></mxfile>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidTemplate) {
				t.Errorf("err = %v, want INVALID_TEMPLATE", err)
			}
		})
	}
}

func TestParseCompressedPage(t *testing.T) {
	model := `<mxGraphModel><root><mxCell id="0"/><mxCell id="x" value="$ai1$ &amp; co"/></root></mxGraphModel>`
	data := `<mxfile><diagram name="s4th_8_ai_t" id="z">` + deflate(t, model) + `</diagram></mxfile>`

	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	cells := doc.Pages()[0].FindElements(".//" + TagCell)
	if len(cells) != 2 {
		t.Fatalf("inflated page has %d cells", len(cells))
	}
	if v := cells[1].SelectAttrValue(AttrValue, ""); v != "$ai1$ & co" {
		t.Errorf("value = %q", v)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	doc, err := Parse([]byte(template))
	if err != nil {
		t.Fatal(err)
	}
	cp := doc.Copy()
	cp.RemovePage(cp.Pages()[0])
	cp.Pages()[0].CreateAttr(AttrName, "renamed")

	if len(doc.Pages()) != 2 {
		t.Error("removing a page from the copy changed the original")
	}
	if doc.Pages()[1].SelectAttrValue(AttrName, "") != "s4th_16_di" {
		t.Error("renaming in the copy changed the original")
	}
}

func TestAppendPage(t *testing.T) {
	doc, _ := Parse([]byte(template))
	page := doc.Pages()[1].Copy()
	page.CreateAttr(AttrName, "s4th_16_di_0")
	doc.AppendPage(page)

	names := doc.PageNames()
	if names[len(names)-1] != "s4th_16_di_0" {
		t.Errorf("PageNames = %v", names)
	}
}

func TestBytesAddsDeclaration(t *testing.T) {
	doc, _ := Parse([]byte(template))
	out, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Errorf("missing declaration: %.60s", out)
	}
	if bytes.Count(out, []byte("<?xml")) != 1 {
		t.Error("declaration duplicated")
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := again.Bytes()
	if !bytes.Equal(out, second) {
		t.Error("serialization is not stable")
	}
}

func TestBytesKeepsDeclaration(t *testing.T) {
	doc, _ := Parse([]byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" + template))
	out, _ := doc.Bytes()
	if bytes.Count(out, []byte("<?xml")) != 1 {
		t.Errorf("declaration count = %d", bytes.Count(out, []byte("<?xml")))
	}
}

func writeTemplate(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modele.drawio")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileRepositoryLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(writeTemplate(t, template))

	first, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first.RemovePage(first.Pages()[0])

	second, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Pages()) != 2 {
		t.Error("Load handed out the canonical document")
	}
}

func TestFileRepositoryReloadsChangedFile(t *testing.T) {
	ctx := context.Background()
	path := writeTemplate(t, template)
	repo := NewFileRepository(path)
	if _, err := repo.Load(ctx); err != nil {
		t.Fatal(err)
	}

	changed := strings.Replace(template, `name="s4th_16_di"`, `name="s4th_8_di"`, 1)
	if err := os.WriteFile(path, []byte(changed), 0644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	doc, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageNames()[1] != "s4th_8_di" {
		t.Errorf("stale template served: %v", doc.PageNames())
	}
}

func TestFileRepositoryMissing(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "none.drawio"))
	if _, err := repo.Load(context.Background()); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("err = %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func TestFileRepositoryInfo(t *testing.T) {
	repo := NewFileRepository(writeTemplate(t, template))
	info, err := repo.Info(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "modele.drawio" {
		t.Errorf("Name = %s", info.Name)
	}
	if info.Size != int64(len(template)) {
		t.Errorf("Size = %d", info.Size)
	}
	if len(info.Pages) != 2 {
		t.Errorf("Pages = %v", info.Pages)
	}
}

func TestFileRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	path := writeTemplate(t, template)
	repo := NewFileRepository(path)

	next := `<mxfile><diagram name="only" id="o"><mxGraphModel><root/></mxGraphModel></diagram></mxfile>`
	info, err := repo.Update(ctx, strings.NewReader(next))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info.Pages, []string{"only"}) {
		t.Errorf("Pages = %v", info.Pages)
	}
	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != next {
		t.Error("file not replaced")
	}
	doc, _ := repo.Load(ctx)
	if !reflect.DeepEqual(doc.PageNames(), []string{"only"}) {
		t.Errorf("Load after Update = %v", doc.PageNames())
	}
}

func TestFileRepositoryUpdateRejects(t *testing.T) {
	ctx := context.Background()
	path := writeTemplate(t, template)
	repo := NewFileRepository(path)

	for _, bad := range []string{"garbage", `<mxfile></mxfile>`} {
		if _, err := repo.Update(ctx, strings.NewReader(bad)); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
			t.Errorf("Update(%q) err = %v, want INVALID_TEMPLATE", bad, err)
		}
	}
	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != template {
		t.Error("rejected upload modified the template")
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewMemoryRepository("modele.drawio", []byte(template))
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := repo.Load(ctx)
	doc.RemovePage(doc.Pages()[0])
	if info, _ := repo.Info(ctx); len(info.Pages) != 2 {
		t.Error("Load handed out the held document")
	}
	if _, err := repo.Update(ctx, strings.NewReader(`<mxfile/>`)); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("err = %v", err)
	}
}
