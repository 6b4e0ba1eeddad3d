package domain

type StockIntent int

const (
	// IntentCreate seeds a fresh inventory row.
	IntentCreate StockIntent = iota
	// IntentManual sets an absolute stock value.
	IntentManual
	// IntentSale consumes a quantity for an order item.
	IntentSale
)

func (i StockIntent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentManual:
		return "manual"
	case IntentSale:
		return "sale"
	}
	return "unknown"
}

type HistoryLabel string

const (
	LabelNew           HistoryLabel = "new"
	LabelReplenishment HistoryLabel = "replenishment"
	LabelAdjustment    HistoryLabel = "adjustment"
	LabelSold          HistoryLabel = "sold"
)

// Label classifies a stock change for the history log.
func Label(before, after int, intent StockIntent) HistoryLabel {
	switch {
	case before == 0 && after == 0:
		return LabelNew
	case after > before:
		return LabelReplenishment
	case after < before && intent == IntentSale:
		return LabelSold
	default:
		return LabelAdjustment
	}
}

// StockChange is the outcome of one ledger adjustment.
type StockChange struct {
	ProductID   uint
	InventoryID uint
	StockBefore int
	StockAfter  int
	Label       HistoryLabel
}
