package searx

// Instances is the subset of the searx.space instances list used to pick an
// instance.
type Instances struct {
	Instances map[string]Instance `json:"instances"`
}

type Instance struct {
	NetworkType string            `json:"network_type"`
	HTTP        HTTP              `json:"http"`
	Timing      Timing            `json:"timing"`
	Engines     map[string]Engine `json:"engines"`
}

type HTTP struct {
	StatusCode int `json:"status_code"`
}

type Stats struct {
	Median float64 `json:"median"`
	Stdev  float64 `json:"stdev"`
	Mean   float64 `json:"mean"`
}

type Search struct {
	SuccessPercentage float64 `json:"success_percentage"`
	All               Stats   `json:"all"`
}

type Timing struct {
	Search   Search `json:"search"`
	SearchGo Search `json:"search_go"`
}

type Engine struct {
	ErrorRate int `json:"error_rate"`
}

// searchEnginesOperators maps searx bang operators to engine names.
var searchEnginesOperators = map[string]string{
	"ddg": "duckduckgo",
	"br":  "brave",
	"bi":  "bing",
	"go":  "google",
	"qw":  "qwant",
	"wp":  "wikipedia",
}
