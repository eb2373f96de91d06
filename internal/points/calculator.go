package points

// MaterialType identifies what kind of recyclable material an order carries.
type MaterialType string

const (
	MaterialPlastic MaterialType = "PLASTIC"
	MaterialPaper   MaterialType = "PAPER"
	MaterialCan     MaterialType = "CAN"
)

func (m MaterialType) Valid() bool {
	switch m {
	case MaterialPlastic, MaterialPaper, MaterialCan:
		return true
	}
	return false
}

// Calculator maps material type and weight to loyalty points.
// The rate table is fixed at construction and never mutated afterwards.
type Calculator struct {
	ratePerKilo map[MaterialType]int
}

// NewCalculator builds a calculator with the given points-per-kilogram table.
// A nil table falls back to the default rates.
func NewCalculator(ratePerKilo map[MaterialType]int) *Calculator {
	if ratePerKilo == nil {
		ratePerKilo = map[MaterialType]int{
			MaterialPlastic: 5,
			MaterialPaper:   8,
			MaterialCan:     10,
		}
	}
	rates := make(map[MaterialType]int, len(ratePerKilo))
	for k, v := range ratePerKilo {
		rates[k] = v
	}
	return &Calculator{ratePerKilo: rates}
}

// Points returns the points earned for weightKg kilograms of material.
// Unknown materials and non-positive weights yield 0. The result truncates
// toward zero, it does not round.
func (c *Calculator) Points(material MaterialType, weightKg float64) int {
	if weightKg <= 0 {
		return 0
	}

	rate, ok := c.ratePerKilo[material]
	if !ok {
		return 0
	}

	return int(float64(rate) * weightKg)
}

// Rate exposes the configured rate for a material, 0 if unknown.
func (c *Calculator) Rate(material MaterialType) int {
	return c.ratePerKilo[material]
}
