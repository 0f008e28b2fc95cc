package models

// AddBatch is the body of POST /add_batch/.
// Values carries no Required rule: binding treats an empty slice as missing,
// but an explicit empty batch is valid input. The handler rejects nil.
type AddBatch struct {
	Symbol string    `json:"symbol" binding:"Required"`
	Values []float64 `json:"values"`
}

// AddBatchResp is the trivial body returned once a batch has been applied.
type AddBatchResp struct {
	Status string `json:"status"`
}
