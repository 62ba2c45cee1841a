package points

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// RawPoint is one record of an exported point list, before classification.
// Nil fields mean the key was absent from the source record.
type RawPoint struct {
	SignalType    *string
	EquipmentName *string
	PointName     *string
}

// Raw builds a RawPoint with every field present.
func Raw(signal, equipment, name string) RawPoint {
	return RawPoint{SignalType: &signal, EquipmentName: &equipment, PointName: &name}
}

// UnmarshalJSON accepts both the legacy export keys (TypePoint, NomEquipement,
// NomPoint) and their English equivalents.
func (r *RawPoint) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var err error
	if r.SignalType, err = pickString(fields, "TypePoint", "signalType"); err != nil {
		return err
	}
	if r.EquipmentName, err = pickString(fields, "NomEquipement", "equipmentName"); err != nil {
		return err
	}
	if r.PointName, err = pickString(fields, "NomPoint", "pointName"); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes the English keys.
func (r RawPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SignalType    *string `json:"signalType,omitempty"`
		EquipmentName *string `json:"equipmentName,omitempty"`
		PointName     *string `json:"pointName,omitempty"`
	}{r.SignalType, r.EquipmentName, r.PointName})
}

func pickString(fields map[string]json.RawMessage, keys ...string) (*string, error) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// Numeric point names show up in some exports.
			var n json.Number
			if nerr := json.Unmarshal(raw, &n); nerr != nil {
				return nil, err
			}
			s = n.String()
		}
		return &s, nil
	}
	return nil, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads a JSON point list. A leading UTF-8 byte order mark and
// surrounding whitespace are ignored. Anything but a top-level array fails
// with MALFORMED_INPUT.
func Decode(r io.Reader) ([]RawPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read point list")
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 || data[0] != '[' {
		return nil, errors.New(errors.ErrCodeMalformedInput, "point list must be a JSON array of records")
	}

	var raw []RawPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode point list")
	}
	return raw, nil
}

// Classified holds points bucketed by signal type, each bucket in input order.
type Classified map[SignalType][]Point

// Classify normalizes raw records into Points grouped by type.
//
// Records with an absent or unrecognized signal token are dropped. A record
// with a recognized token but no equipment or point name fails with
// MALFORMED_INPUT. The input slice is never modified.
func Classify(raw []RawPoint) (Classified, error) {
	out := make(Classified)
	for i, r := range raw {
		if r.SignalType == nil {
			continue
		}
		signal, ok := ParseSignalType(*r.SignalType)
		if !ok {
			continue
		}
		if r.EquipmentName == nil {
			return nil, errors.New(errors.ErrCodeMalformedInput, "record %d (%s): missing equipment name", i, signal)
		}
		if r.PointName == nil {
			return nil, errors.New(errors.ErrCodeMalformedInput, "record %d (%s): missing point name", i, signal)
		}
		out[signal] = append(out[signal], New(*r.EquipmentName, *r.PointName, signal))
	}
	return out, nil
}

// Demand is the number of points per allocatable type.
type Demand map[SignalType]int

// Demand counts the allocatable points. COM points do not occupy channels.
func (c Classified) Demand() Demand {
	d := make(Demand, len(Allocatable))
	for _, t := range Allocatable {
		d[t] = len(c[t])
	}
	return d
}

// Total returns the number of classified points of every type, COM included.
func (c Classified) Total() int {
	n := 0
	for _, pts := range c {
		n += len(pts)
	}
	return n
}

// Counts returns the size of each bucket keyed by the type's string form.
func (c Classified) Counts() map[string]int {
	out := make(map[string]int, len(c))
	for t, pts := range c {
		out[string(t)] = len(pts)
	}
	return out
}
