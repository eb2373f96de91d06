package factory

// Factory is the destination that receives delivered materials. Routing is
// deliberately minimal: order creation picks the first registered factory.
type Factory struct {
	ID       int64
	Name     string
	City     string
	Street   string
	Capacity int
}
