package points

import (
	"strings"
	"testing"

	"github.com/matzehuels/ioschema/pkg/errors"
)

func TestDisplayName(t *testing.T) {
	p := New("PUMP1", "RUN", DI)
	if p.DisplayName() != "PUMP1 - RUN" {
		t.Errorf("DisplayName() = %q, want %q", p.DisplayName(), "PUMP1 - RUN")
	}
	if p.String() != "PUMP1 - RUN" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestParseSignalType(t *testing.T) {
	tests := []struct {
		token string
		want  SignalType
		ok    bool
	}{
		{"DI", DI, true},
		{"DO", DO, true},
		{"AI", AI, true},
		{"AO", AO, true},
		{"COM : Modbus RS485", COM, true},
		{"COM", "", false},
		{"di", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseSignalType(tt.token)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseSignalType(%q) = %q, %v; want %q, %v", tt.token, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSignalTypePlaceholder(t *testing.T) {
	if DI.Placeholder() != "di" || AO.Placeholder() != "ao" {
		t.Error("Placeholder() should be the lowercase type")
	}
	if COM.Token() != "COM : Modbus RS485" {
		t.Errorf("COM.Token() = %q", COM.Token())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"legacy keys", `[{"TypePoint":"DI","NomEquipement":"P1","NomPoint":"RUN"}]`, 1, false},
		{"english keys", `[{"signalType":"AI","equipmentName":"T1","pointName":"LEVEL"}]`, 1, false},
		{"with BOM", "\ufeff" + `[{"TypePoint":"DO","NomEquipement":"P1","NomPoint":"CMD"}]`, 1, false},
		{"surrounding whitespace", "\n  []\n", 0, false},
		{"numeric point name", `[{"TypePoint":"DI","NomEquipement":"P1","NomPoint":12}]`, 1, false},
		{"object instead of array", `{"TypePoint":"DI"}`, 0, true},
		{"empty document", ``, 0, true},
		{"invalid json", `[{"TypePoint":}]`, 0, true},
		{"array of scalars", `[1, 2]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeMalformedInput) {
					t.Errorf("error code = %v, want MALFORMED_INPUT", errors.GetCode(err))
				}
				return
			}
			if len(raw) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(raw), tt.wantLen)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	raw := []RawPoint{
		Raw("DI", "P1", "RUN"),
		Raw("AI", "T1", "LEVEL"),
		Raw("DI", "P2", "RUN"),
		Raw("XX", "IGNORED", "POINT"),
		Raw("COM : Modbus RS485", "METER", "BUS"),
		Raw("DI", "P3", "FAULT"),
		{},
	}

	got, err := Classify(raw)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}

	wantDI := []string{"P1 - RUN", "P2 - RUN", "P3 - FAULT"}
	if len(got[DI]) != len(wantDI) {
		t.Fatalf("DI bucket = %d points, want %d", len(got[DI]), len(wantDI))
	}
	for i, p := range got[DI] {
		if p.DisplayName() != wantDI[i] {
			t.Errorf("DI[%d] = %q, want %q", i, p.DisplayName(), wantDI[i])
		}
		if p.SignalType() != DI {
			t.Errorf("DI[%d] signal = %q", i, p.SignalType())
		}
	}
	if len(got[AI]) != 1 || len(got[COM]) != 1 {
		t.Errorf("AI = %d, COM = %d; want 1 and 1", len(got[AI]), len(got[COM]))
	}
	if got.Total() != 5 {
		t.Errorf("Total() = %d, want 5", got.Total())
	}

	d := got.Demand()
	if d[DI] != 3 || d[AI] != 1 || d[DO] != 0 || d[AO] != 0 {
		t.Errorf("Demand() = %v", d)
	}
	if _, ok := d[COM]; ok {
		t.Error("Demand() should not count COM points")
	}
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	raw := []RawPoint{Raw("DI", "P1", "RUN")}
	before := *raw[0].EquipmentName

	if _, err := Classify(raw); err != nil {
		t.Fatal(err)
	}
	if *raw[0].EquipmentName != before || *raw[0].PointName != "RUN" {
		t.Error("Classify() modified its input")
	}
}

func TestClassifyMissingFields(t *testing.T) {
	signal, name := "DO", "CMD"
	tests := []struct {
		name string
		raw  RawPoint
	}{
		{"missing equipment", RawPoint{SignalType: &signal, PointName: &name}},
		{"missing point name", RawPoint{SignalType: &signal, EquipmentName: &name}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify([]RawPoint{tt.raw})
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("Classify() error = %v, want MALFORMED_INPUT", err)
			}
		})
	}
}

func TestClassifyUnknownTypeWithMissingFieldsIsDropped(t *testing.T) {
	signal := "SPARE"
	got, err := Classify([]RawPoint{{SignalType: &signal}})
	if err != nil {
		t.Fatalf("Classify() error = %v, want nil", err)
	}
	if got.Total() != 0 {
		t.Errorf("Total() = %d, want 0", got.Total())
	}
}
