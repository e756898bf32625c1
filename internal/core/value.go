package core

// Value is the current reading of one parameter.
type Value struct {
	ValueID int64  `json:"value_id"`
	Value   string `json:"value"`

	// State is the portal's per-value status flag ("OK" or an error marker).
	State string `json:"state,omitempty"`
}

// System is one monitored installation as listed by the portal.
type System struct {
	ID        int64  `json:"id"`
	GatewayID int64  `json:"gateway_id"`
	Name      string `json:"name"`
}
