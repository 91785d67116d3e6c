package core

// Progress is the state of one arc against its goal.
type Progress struct {
	Total      float64 `json:"total"`
	Goal       float64 `json:"goal"`
	Percentage float64 `json:"percentage"`
}

// Summary is the TV view of the current week and month arcs.
type Summary struct {
	Week  Progress `json:"week"`
	Month Progress `json:"month"`
}

type (
	DayItem struct {
		Client string  `json:"client"`
		Amount float64 `json:"amount"`
	}

	DayBucket struct {
		Items []DayItem `json:"items"`
		Total float64   `json:"total"`
	}

	WeekRange struct {
		StartISO string `json:"startISO"`
		EndISO   string `json:"endISO"`
	}

	// WeekView is the weekly table: one bucket per configured day, listed
	// in Order.
	WeekView struct {
		Range    WeekRange             `json:"range"`
		Days     map[string]*DayBucket `json:"days"`
		Order    []string              `json:"order"`
		Subtotal float64               `json:"subtotal"`
	}
)
