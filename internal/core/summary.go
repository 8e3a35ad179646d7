package core

// TypeCategoryTotal is one row of a month summary: the sum and count of all
// transactions sharing a (type, category) pair.
type TypeCategoryTotal struct {
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Total    float64         `json:"total"`
	Count    int64           `json:"count"`
}

// CategoryTotal is one row of a single-type category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}
