package core

// Parameter describes one monitored value exposed by a heating system.
type Parameter struct {
	// ValueID identifies the parameter's current value on the portal.
	ValueID int64 `json:"value_id"`

	// ParameterID identifies the parameter definition itself.
	ParameterID int64 `json:"parameter_id"`

	// BundleID groups parameters that the portal serves in one batch request.
	BundleID int64 `json:"bundle_id"`

	Name string `json:"name"`

	// Parent is the menu group the parameter was discovered under,
	// e.g. "Heizung" or "Warmwasser". Empty in expert mode.
	Parent string `json:"parent,omitempty"`

	Unit UnitKind `json:"unit"`

	ReadOnly bool `json:"read_only"`

	// ListItems maps raw values to display names for UnitList parameters.
	ListItems map[string]string `json:"list_items,omitempty"`
}

// Key identifies a parameter for deduplication purposes. The portal's GUI
// description repeats the same descriptor under several menus; two entries
// with the same value id and name are the same parameter.
type Key struct {
	ValueID int64
	Name    string
}

func (p Parameter) Key() Key {
	return Key{ValueID: p.ValueID, Name: p.Name}
}
