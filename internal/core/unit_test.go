package core

import "testing"

func TestUnitKindFromDescriptor(t *testing.T) {
	tests := []struct {
		name         string
		unit         string
		hasListItems bool
		want         UnitKind
	}{
		{name: "Celsius", unit: "°C", want: UnitTemperature},
		{name: "Pressure", unit: "bar", want: UnitPressure},
		{name: "Percent", unit: "%", want: UnitPercent},
		{name: "Hours German", unit: "Std", want: UnitHours},
		{name: "RPM", unit: "U/min", want: UnitRPM},
		{name: "Energy", unit: "kWh", want: UnitEnergy},
		{name: "Empty", unit: "", want: UnitNone},
		{name: "Unknown", unit: "furlongs", want: UnitNone},
		{name: "List wins over unit", unit: "°C", hasListItems: true, want: UnitList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnitKindFromDescriptor(tt.unit, tt.hasListItems); got != tt.want {
				t.Errorf("UnitKindFromDescriptor(%q, %v) = %v, want %v", tt.unit, tt.hasListItems, got, tt.want)
			}
		})
	}
}

func TestParameter_FormatValue(t *testing.T) {
	listParam := Parameter{
		Unit:      UnitList,
		ListItems: map[string]string{"1": "Automatik", "2": "Standby"},
	}

	tests := []struct {
		name  string
		param Parameter
		raw   string
		want  string
	}{
		{name: "Temperature suffix", param: Parameter{Unit: UnitTemperature}, raw: "21.5", want: "21.5 °C"},
		{name: "No unit", param: Parameter{Unit: UnitNone}, raw: "42", want: "42"},
		{name: "List resolved", param: listParam, raw: "1", want: "Automatik"},
		{name: "List unknown item", param: listParam, raw: "9", want: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.param.FormatValue(tt.raw); got != tt.want {
				t.Errorf("FormatValue(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParameter_ValidateValue(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		raw     string
		wantErr bool
	}{
		{name: "Read only rejected", param: Parameter{Name: "Aussentemperatur", ReadOnly: true}, raw: "5", wantErr: true},
		{name: "Percent in range", param: Parameter{Unit: UnitPercent}, raw: "55", wantErr: false},
		{name: "Percent out of range", param: Parameter{Unit: UnitPercent}, raw: "140", wantErr: true},
		{name: "Non numeric", param: Parameter{Unit: UnitPressure}, raw: "high", wantErr: true},
		{name: "List item valid", param: Parameter{Unit: UnitList, ListItems: map[string]string{"0": "Aus"}}, raw: "0", wantErr: false},
		{name: "List item invalid", param: Parameter{Unit: UnitList, ListItems: map[string]string{"0": "Aus"}}, raw: "3", wantErr: true},
		{name: "Unvalidated unit", param: Parameter{Unit: UnitTemperature}, raw: "-10", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.param.ValidateValue(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateValue(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}
