package model

const (
	CabinActive   = "active"
	CabinInactive = "inactive"
)

type Cabin struct {
	ID           string  `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string  `json:"name" bson:"name"`
	MaxCapacity  int     `json:"maxCapacity" bson:"max_capacity"`
	RegularPrice float64 `json:"regularPrice" bson:"regular_price"`
	Discount     float64 `json:"discount" bson:"discount"`
	Status       string  `json:"status" bson:"status"`
	Image        string  `json:"image,omitempty" bson:"image,omitempty"`
}

// IsActive treats a missing status as active; only an explicit "inactive"
// takes a cabin out of service.
func (c *Cabin) IsActive() bool {
	return c.Status != CabinInactive
}

func (c *Cabin) EffectiveRate() float64 {
	if c.Discount > 0 {
		return c.RegularPrice - c.Discount
	}
	return c.RegularPrice
}
