package smartset

// Portal routes, relative to the API origin.
const (
	systemListRoute      = "/portal/GetSystemList"
	createSessionRoute   = "/portal/CreateSession2"
	updateSessionRoute   = "/portal/UpdateSession"
	guiDescriptionRoute  = "/portal/GetGuiDescriptionForGateway"
	parameterValuesRoute = "/portal/GetParameterValues"
	writeParametersRoute = "/portal/WriteParameterValues"
)

type systemEntry struct {
	ID        int64  `json:"Id"`
	GatewayID int64  `json:"GatewayId"`
	Name      string `json:"Name"`
}

type createSessionPayload struct {
	Timestamp string `json:"Timestamp"`
}

type createSessionResponse struct {
	BrowserSessionID int64 `json:"BrowserSessionId"`
}

type updateSessionPayload struct {
	SessionID int64 `json:"SessionId"`
}

// guiDescription is the typed slice of the GUI document the guided
// traversal needs. Expert mode works on the raw document instead.
type guiDescription struct {
	MenuItems []menuItem `json:"MenuItems"`
}

type menuItem struct {
	Name           string     `json:"Name"`
	TabViews       []tabView  `json:"TabViews"`
	SubMenuEntries []menuItem `json:"SubMenuEntries"`
}

type tabView struct {
	TabName              string                `json:"TabName"`
	BundleID             int64                 `json:"BundleId"`
	ParameterDescriptors []parameterDescriptor `json:"ParameterDescriptors"`
}

type parameterDescriptor struct {
	ValueID     int64      `json:"ValueId" mapstructure:"ValueId"`
	ParameterID int64      `json:"ParameterId" mapstructure:"ParameterId"`
	BundleID    int64      `json:"BundleId" mapstructure:"BundleId"`
	Name        string     `json:"Name" mapstructure:"Name"`
	Unit        string     `json:"Unit" mapstructure:"Unit"`
	IsReadOnly  bool       `json:"IsReadOnly" mapstructure:"IsReadOnly"`
	ListItems   []listItem `json:"ListItems" mapstructure:"ListItems"`
}

type listItem struct {
	Value       string `json:"Value" mapstructure:"Value"`
	DisplayText string `json:"DisplayText" mapstructure:"DisplayText"`
}

type parameterValuesPayload struct {
	SessionID    int64   `json:"SessionId"`
	GatewayID    int64   `json:"GatewayId"`
	SystemID     int64   `json:"SystemId"`
	BundleID     int64   `json:"BundleId"`
	IsSubBundle  bool    `json:"IsSubBundle"`
	ValueIDList  []int64 `json:"ValueIdList"`
	GuiIDChanged bool    `json:"GuiIdChanged"`
	LastAccess   string  `json:"LastAccess,omitempty"`
}

type parameterValuesResponse struct {
	LastAccess string       `json:"LastAccess"`
	Values     []valueEntry `json:"Values"`
}

type valueEntry struct {
	ValueID int64  `json:"ValueId"`
	Value   string `json:"Value"`
	State   string `json:"State"`
}

type writeParametersPayload struct {
	SessionID int64        `json:"SessionId"`
	GatewayID int64        `json:"GatewayId"`
	SystemID  int64        `json:"SystemId"`
	BundleID  int64        `json:"BundleId"`
	Values    []writeValue `json:"WriteParameterValues"`
}

type writeValue struct {
	ValueID int64  `json:"ValueId"`
	Value   string `json:"Value"`
}
