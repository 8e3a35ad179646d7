package core

// Default category sets offered by input forms. These are a presentation
// convention only: the store accepts any category string and never checks
// membership against these lists.
var (
	ExpenseCategories = []string{
		"Makan",
		"Transportasi",
		"Kebutuhan",
		"Jajan/Kopi",
		"Lainnya",
	}

	IncomeCategories = []string{
		"Gaji",
		"Lainnya",
	}
)
