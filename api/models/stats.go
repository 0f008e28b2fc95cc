package models

// StatsQuery are the query params of GET /stats/.
type StatsQuery struct {
	Symbol string `json:"symbol" form:"symbol" binding:"Required"`
	K      int    `json:"k" form:"k"`
}

// StatsResp is the response of GET /stats/: the stats over the last 10^k
// accepted values of the symbol. All values are finite: non-finite inputs
// never enter the tank and var is clamped at zero.
type StatsResp struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Last float64 `json:"last"`
	Avg  float64 `json:"avg"`
	Var  float64 `json:"var"`
	Size uint64  `json:"size"`
}

// ErrorResp is the body of any non-2xx response.
type ErrorResp struct {
	Error string `json:"error"`
}
