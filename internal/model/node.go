package model

// Position is a world position in meters
type Position struct {
	X float32
	Y float32
	Z float32
}

// Quaternion is a node orientation
type Quaternion struct {
	W float32
	X float32
	Y float32
	Z float32
}

// Node is a shared anchor point that items reference by Uid
type Node struct {
	Uid             uint32     // Unique identifier, first 4 bytes of the record
	Flags           uint32     // Raw node flags
	Position        Position   // Decoded from 24.8 fixed point
	Rotation        Quaternion // Orientation
	BackwardItemUid uint64     // Item entering the node (0 if none)
	ForwardItemUid  uint64     // Item leaving the node (0 if none)
}
