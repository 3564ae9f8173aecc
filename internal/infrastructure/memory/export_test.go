package memory

import "github.com/shopspring/decimal"

// OverwriteCachedStock desincroniza el stock materializado para probar la verificación.
func (s *Store) OverwriteCachedStock(productID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stock[productID] = qty
}
