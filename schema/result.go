package schema

// DayOutcome is the state of a day after a write: the persisted record and
// every engine's profile in version order.
type DayOutcome struct {
	Record   DailyRecord `json:"record"`
	Profiles []Profile   `json:"profiles"`
}

// RescoreOutcome is the result of recomputing every stored record.
type RescoreOutcome struct {
	Dates    []string  `json:"dates"`
	Rebuilt  bool      `json:"rebuilt"`
	Profiles []Profile `json:"profiles"`
}

// PricingRow is one line of the effective pricing table.
type PricingRow struct {
	Model string `json:"model"`
	ModelRate
	Default bool `json:"default"`
}
