package domain

// Category buckets derived by the classifier.
const (
	CategoryInjectable = "Injectable"
	CategoryOral       = "Oral"
	CategoryOther      = "Other"
)

type (
	// A Product is one catalog entry. Products are built in bulk from the
	// feed and are immutable once constructed; every sync replaces the
	// whole set.
	Product struct {
		ID               string
		Name             string
		Description      string
		Price            float64
		Category         string
		OriginalCategory string
		Image            string
		InStock          bool
		SKU              string
	}

	// A FeedRecord is one raw row of the catalog source before
	// normalization.
	FeedRecord struct {
		ID        string
		Name      string
		ShortDesc string
		LongDesc  string
		Price     string
		AltPrice  string
		Images    string
		Category  string
		StockFlag string
		SKU       string
		RowIndex  int
	}

	// LoadStats summarizes one catalog sync.
	LoadStats struct {
		Total      int
		Skipped    int
		WithImage  int
		ByCategory map[string]int
	}
)

// A SearchResult annotates a product with a relevance score. The score is
// only comparable within a single query's result set.
type SearchResult struct {
	Product Product
	Score   int
}
