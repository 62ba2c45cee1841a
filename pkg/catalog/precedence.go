package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed precedence.toml
var defaultPrecedence []byte

// Precedence is the ordered list of module identifiers the sequencer follows
// after placing the controller.
type Precedence struct {
	Order []string `toml:"order"`

	rank map[string]int
}

// NewPrecedence builds a table from an explicit order. Repeated identifiers
// keep their first position.
func NewPrecedence(order ...string) Precedence {
	p := Precedence{Order: order}
	p.index()
	return p
}

// DefaultPrecedence returns the table shipped with ioschema.
func DefaultPrecedence() Precedence {
	p, err := ParsePrecedence(defaultPrecedence)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded precedence table: %v", err))
	}
	return p
}

// ParsePrecedence decodes a TOML precedence table.
func ParsePrecedence(data []byte) (Precedence, error) {
	var p Precedence
	if _, err := toml.Decode(string(data), &p); err != nil {
		return Precedence{}, fmt.Errorf("decode precedence: %w", err)
	}
	if len(p.Order) == 0 {
		return Precedence{}, fmt.Errorf("decode precedence: order is empty")
	}
	p.index()
	return p, nil
}

// LoadPrecedence reads a TOML precedence table from path.
func LoadPrecedence(path string) (Precedence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Precedence{}, fmt.Errorf("read precedence %s: %w", path, err)
	}
	return ParsePrecedence(data)
}

func (p *Precedence) index() {
	p.rank = make(map[string]int, len(p.Order))
	for i, id := range p.Order {
		if _, dup := p.rank[id]; !dup {
			p.rank[id] = i
		}
	}
}

// Rank returns the position of id in the table.
func (p Precedence) Rank(id string) (int, bool) {
	if p.rank == nil {
		p.index()
	}
	r, ok := p.rank[id]
	return r, ok
}

// Len returns the number of distinct identifiers in the table.
func (p Precedence) Len() int {
	if p.rank == nil {
		p.index()
	}
	return len(p.rank)
}
