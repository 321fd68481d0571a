package entity

import "fmt"

type ProductType string

const (
	ProductTypeSubscription ProductType = "subscription"
	ProductTypeKey          ProductType = "key"
)

// Duration is the billing period of a subscription item.
type Duration string

const (
	Duration30Days Duration = "30-d"
	Duration90Days Duration = "90-d"
	Duration1Year  Duration = "1-y"
)

// Multiplier is the flat price tier applied to the monthly unit price.
func (d Duration) Multiplier() float64 {
	switch d {
	case Duration90Days:
		return 2.5
	case Duration1Year:
		return 8
	default:
		return 1
	}
}

func (d Duration) Valid() bool {
	switch d {
	case Duration30Days, Duration90Days, Duration1Year:
		return true
	}
	return false
}

func ParseDuration(value string) (Duration, error) {
	d := Duration(value)
	if !d.Valid() {
		return "", fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

type Product struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Type        ProductType `yaml:"type" json:"type"`
	Price       float64     `yaml:"price" json:"price"`
	Description string      `yaml:"description" json:"description,omitempty"`
}
