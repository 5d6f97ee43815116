package constraint

import "fmt"

// FeatureType tells which kind of shape feature produced one side of a contact.
type FeatureType uint8

const (
	FeatureVertex FeatureType = iota
	FeatureEdge
	FeatureFace
)

func (t FeatureType) String() string {
	switch t {
	case FeatureVertex:
		return "vertex"
	case FeatureEdge:
		return "edge"
	case FeatureFace:
		return "face"
	}
	return fmt.Sprintf("FeatureType(%d)", uint8(t))
}

// FeatureID identifies the pair of features (one per shape) a contact point
// was built from. It stays the same from one step to the next as long as the
// same features touch, which is what warm starting relies on.
type FeatureID struct {
	TypeA  FeatureType
	IndexA uint8
	TypeB  FeatureType
	IndexB uint8
}

// Key packs the feature pair into a single comparable integer.
func (f FeatureID) Key() uint32 {
	return uint32(f.TypeA)<<24 | uint32(f.IndexA)<<16 | uint32(f.TypeB)<<8 | uint32(f.IndexB)
}

// Flip swaps the A and B sides.
func (f FeatureID) Flip() FeatureID {
	return FeatureID{TypeA: f.TypeB, IndexA: f.IndexB, TypeB: f.TypeA, IndexB: f.IndexA}
}

func (f FeatureID) String() string {
	return fmt.Sprintf("%s%d/%s%d", f.TypeA, f.IndexA, f.TypeB, f.IndexB)
}
