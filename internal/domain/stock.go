// Package domain defines the core types shared across stock-query: the tracked
// stock record and the quote a provider returns for it.
package domain

// Stock is one tracked instrument and its last-known quote fields. Code is
// the stable identity used for persistence, lookups and fetch requests.
type Stock struct {
	Title     string  `json:"title"`
	Code      string  `json:"code"`
	Price     float64 `json:"price"`
	Percent   float64 `json:"percent"` // fraction, 0.0123 = +1.23%
	Open      float64 `json:"open"`
	PrevClose float64 `json:"prev_close"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
}

// NewStock returns a record for code with default quote fields. The title
// falls back to the code until a fetch supplies a display name.
func NewStock(code string) Stock {
	return Stock{Title: code, Code: code}
}

// Quote is one provider result for a single code.
type Quote struct {
	Name      string
	Price     float64
	Percent   float64
	Open      float64
	PrevClose float64
	High      float64
	Low       float64
}

// Apply overwrites all seven quote fields of s from q. Callers holding a
// shared list must do so under its lock.
func (s *Stock) Apply(q Quote) {
	s.Title = q.Name
	if s.Title == "" {
		s.Title = s.Code
	}
	s.Price = q.Price
	s.Percent = q.Percent
	s.Open = q.Open
	s.PrevClose = q.PrevClose
	s.High = q.High
	s.Low = q.Low
}

// Codes returns the codes of stocks in order.
func Codes(stocks []Stock) []string {
	codes := make([]string, len(stocks))
	for i := range stocks {
		codes[i] = stocks[i].Code
	}
	return codes
}
