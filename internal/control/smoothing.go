package control

// EMA is an exponential moving average starting at zero. Retain is the
// weight kept from the previous value.
type EMA struct {
	Retain float64
	value  float64
}

// NewEMA creates an EMA keeping retain of the previous value on each update.
func NewEMA(retain float64) *EMA {
	return &EMA{Retain: retain}
}

// Update folds x into the average and returns the new value.
func (e *EMA) Update(x float64) float64 {
	e.value = e.value*e.Retain + x*(1-e.Retain)
	return e.value
}

// Value returns the current average.
func (e *EMA) Value() float64 {
	return e.value
}

// Reset returns the average to zero.
func (e *EMA) Reset() {
	e.value = 0
}
