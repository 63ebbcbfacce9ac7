package types

import "fmt"

// Asset identifies one side of a two-asset pool by its position in the pair.
type Asset uint8

const (
	AssetZero Asset = iota
	AssetOne
)

// Other returns the opposite side of the pair.
func (a Asset) Other() Asset {
	if a == AssetZero {
		return AssetOne
	}
	return AssetZero
}

func (a Asset) String() string {
	switch a {
	case AssetZero:
		return "asset0"
	case AssetOne:
		return "asset1"
	default:
		return fmt.Sprintf("asset(%d)", uint8(a))
	}
}
