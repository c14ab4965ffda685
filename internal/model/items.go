package model

// BoundingBox is the axis-aligned box stored in every item header
type BoundingBox struct {
	Min Position
	Max Position
}

// ItemHeader holds the fields common to every item record
type ItemHeader struct {
	Type         ItemType
	Uid          uint64
	Bounds       BoundingBox
	Flags        uint32
	ViewDistance uint8
}

// Item header flags
const (
	FlagHidden uint32 = 0x01
)

// Hidden reports whether the item carries the hidden flag
func (h ItemHeader) Hidden() bool {
	return h.Flags&FlagHidden != 0
}

// Item is one decoded item record. Every variant knows its record length
// and whether it passed validation.
type Item interface {
	Header() ItemHeader
	BlockSize() int
	Valid() bool
}

// ItemBase implements Item for the variant structs that embed it
type ItemBase struct {
	Head    ItemHeader
	Size    int  // Record length in bytes, header included
	IsValid bool // Whether the item should be kept
}

func (b *ItemBase) Header() ItemHeader { return b.Head }
func (b *ItemBase) BlockSize() int     { return b.Size }
func (b *ItemBase) Valid() bool        { return b.IsValid }

// Road is a road segment between two nodes
type Road struct {
	ItemBase
	Look       Token
	StartNode  uint32
	EndNode    uint32
	Length     float32
	Vegetation int // Vegetation sphere count
	Stamps     int // Stamp count
}

// Prefab is a placed prefab (junction, company yard, ...)
type Prefab struct {
	ItemBase
	Model   Token
	Variant Token
	Origin  uint16   // Index into Nodes of the origin node
	Nodes   []uint32 // Node uids
	Slaves  []uint64 // Slave item uids
}

// Company is a company depot placed on a prefab
type Company struct {
	ItemBase
	Name      Token
	City      Token
	PrefabUid uint64
	Node      uint32
	Spots     [5][]uint32 // Spot node lists
}

// Service is a service point (gas, repair, ...) on a prefab
type Service struct {
	ItemBase
	Node      uint32
	PrefabUid uint64
}

// CutPlane is a visibility cut plane
type CutPlane struct {
	ItemBase
	Nodes []uint32
}

// City is a city area
type City struct {
	ItemBase
	Name   Token
	Width  float32
	Height float32
	Node   uint32
}

// MapOverlay is an icon drawn on the in-game map
type MapOverlay struct {
	ItemBase
	Overlay Token
	Node    uint32
}

// Ferry is a ferry or train port
type Ferry struct {
	ItemBase
	Port  Token
	Node  uint32
	LandX float32
	LandZ float32
}

// Garage is a buyable garage
type Garage struct {
	ItemBase
	City     Token
	Building uint32
	Node     uint32
	Spots    []uint32
}

// TriggerAction is one action fired by a trigger
type TriggerAction struct {
	Action Token
	Value  float32
}

// Trigger is an area that fires actions
type Trigger struct {
	ItemBase
	Nodes      []uint32
	Actions    []TriggerAction
	Range      float32
	ResetDelay float32
}

// FuelPump is a fuel pump on a prefab
type FuelPump struct {
	ItemBase
	Node      uint32
	PrefabUid uint64
}

// RoadSideItem is a sign or object attached to a road
type RoadSideItem struct {
	ItemBase
	Model   Token
	Node    uint32
	RoadUid uint64
}

// BusStop is a bus stop placed on a prefab
type BusStop struct {
	ItemBase
	City      Token
	PrefabUid uint64
	Node      uint32
}

// TrafficRule applies a traffic rule to an area
type TrafficRule struct {
	ItemBase
	Rule  Token
	Nodes []uint32
	Range float32
}

// TrajectoryRule is one rule of a trajectory item
type TrajectoryRule struct {
	Rule   Token
	Params []float32
}

// TrajectoryItem is an AI trajectory
type TrajectoryItem struct {
	ItemBase
	Nodes       []uint32
	Rules       []TrajectoryRule
	Checkpoints int
}

// MapArea is a colored area drawn on the in-game map
type MapArea struct {
	ItemBase
	Nodes []uint32
	Color uint32
}
