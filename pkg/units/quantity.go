package units

import "fmt"

// Quantity is a scalar value tagged with its unit.
// Implements: prd001-property-containers R3.
type Quantity struct {
	Value float64
	Unit  Unit
}

// NewQuantity builds a quantity from a value and unit.
func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// ConvertTo returns the quantity re-expressed in to.
// Fails with ErrUnitMismatch when the dimensions differ.
func (q Quantity) ConvertTo(to Unit) (Quantity, error) {
	value, err := q.Unit.Convert(q.Value, to)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: to}, nil
}

// String renders the quantity as "<value> <unit>".
func (q Quantity) String() string {
	return fmt.Sprintf("%v %s", q.Value, q.Unit.Name())
}
