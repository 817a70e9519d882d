package models

// Progress counts delivered images against the requested total.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent is completed/total scaled to 0-100, truncated.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	pct := p.Completed * 100 / p.Total
	if pct > 100 {
		return 100
	}
	return pct
}
