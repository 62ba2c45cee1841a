package points

import (
	"fmt"
)

// SignalType is the logical type of an I/O point.
type SignalType string

// Recognized signal types.
const (
	DI  SignalType = "DI"
	DO  SignalType = "DO"
	AI  SignalType = "AI"
	AO  SignalType = "AO"
	COM SignalType = "COM"
)

// comToken is how Modbus links are spelled in exported point lists.
const comToken = "COM : Modbus RS485"

// Allocatable lists the types that occupy module channels, in the order
// capacity is checked.
var Allocatable = []SignalType{DI, AI, DO, AO}

// ParseSignalType maps a raw token to its SignalType.
// The boolean is false for tokens that are not recognized.
func ParseSignalType(token string) (SignalType, bool) {
	switch token {
	case "DI":
		return DI, true
	case "DO":
		return DO, true
	case "AI":
		return AI, true
	case "AO":
		return AO, true
	case comToken:
		return COM, true
	}
	return "", false
}

// Token returns the raw token used in point lists.
func (t SignalType) Token() string {
	if t == COM {
		return comToken
	}
	return string(t)
}

// Placeholder returns the lowercase key used in template placeholders ("di", "ao", ...).
func (t SignalType) Placeholder() string {
	switch t {
	case DI:
		return "di"
	case DO:
		return "do"
	case AI:
		return "ai"
	case AO:
		return "ao"
	}
	return "com"
}

// Point is a single classified I/O signal. Values are immutable: the display
// name is derived once by [New] and never supplied by callers.
type Point struct {
	equipment string
	name      string
	signal    SignalType
	display   string
}

// New builds a Point and derives its display name.
func New(equipment, name string, signal SignalType) Point {
	return Point{
		equipment: equipment,
		name:      name,
		signal:    signal,
		display:   DisplayName(equipment, name),
	}
}

// DisplayName formats the label printed on diagrams: "EQUIPMENT - POINT".
func DisplayName(equipment, name string) string {
	return fmt.Sprintf("%s - %s", equipment, name)
}

// EquipmentName returns the owning equipment.
func (p Point) EquipmentName() string { return p.equipment }

// PointName returns the point name within its equipment.
func (p Point) PointName() string { return p.name }

// SignalType returns the point's type.
func (p Point) SignalType() SignalType { return p.signal }

// DisplayName returns the diagram label.
func (p Point) DisplayName() string { return p.display }

// String implements fmt.Stringer.
func (p Point) String() string { return p.display }
