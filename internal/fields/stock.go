package fields

import (
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
)

var stockOrder = []struct {
	status domain.StockStatus
	words  *lexicon.KeywordSet
}{
	{domain.StockOutOfStock, lexicon.OutOfStockWords},
	{domain.StockLimited, lexicon.LimitedWords},
	{domain.StockPreOrder, lexicon.PreOrderWords},
	{domain.StockAvailable, lexicon.AvailableWords},
}

// StockStatus returns the first status whose keywords occur in text.
func StockStatus(text string) domain.StockStatus {
	for _, s := range stockOrder {
		if s.words.Contains(text) {
			return s.status
		}
	}
	return domain.StockAvailable
}
