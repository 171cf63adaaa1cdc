package enums

import "fmt"

// DrinkType distinguishes hot and iced menu items.
type DrinkType string

const (
	DrinkTypeHot  DrinkType = "hot"
	DrinkTypeIced DrinkType = "iced"
)

var validDrinkTypes = []DrinkType{
	DrinkTypeHot,
	DrinkTypeIced,
}

// String implements fmt.Stringer.
func (d DrinkType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DrinkType.
func (d DrinkType) IsValid() bool {
	for _, candidate := range validDrinkTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDrinkType converts raw input into a DrinkType.
func ParseDrinkType(value string) (DrinkType, error) {
	for _, candidate := range validDrinkTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid drink type %q", value)
}
