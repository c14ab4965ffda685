package model

import "fmt"

// ItemType is the 32-bit type tag that starts every item record
type ItemType uint32

// Item types with a decoder. Values are fixed by the sector format.
const (
	ItemRoad           ItemType = 0x03
	ItemPrefab         ItemType = 0x04
	ItemCompany        ItemType = 0x06
	ItemService        ItemType = 0x07
	ItemCutPlane       ItemType = 0x08
	ItemCity           ItemType = 0x0C
	ItemMapOverlay     ItemType = 0x12
	ItemFerry          ItemType = 0x13
	ItemGarage         ItemType = 0x16
	ItemTrigger        ItemType = 0x22
	ItemFuelPump       ItemType = 0x23
	ItemRoadSideItem   ItemType = 0x24
	ItemBusStop        ItemType = 0x25
	ItemTrafficRule    ItemType = 0x26
	ItemTrajectoryItem ItemType = 0x29
	ItemMapArea        ItemType = 0x2A
)

// Item types the game writes but nothing here decodes. They only have names
// so diagnostics can say what was found.
const (
	ItemTerrain     ItemType = 0x01
	ItemBuilding    ItemType = 0x02
	ItemModel       ItemType = 0x05
	ItemMover       ItemType = 0x09
	ItemNoWeather   ItemType = 0x0B
	ItemHinge       ItemType = 0x0D
	ItemSound       ItemType = 0x15
	ItemCameraPoint ItemType = 0x17
	ItemBezierPatch ItemType = 0x27
	ItemCompound    ItemType = 0x28
	ItemFarModel    ItemType = 0x2B
	ItemCurve       ItemType = 0x2C
	ItemCamera      ItemType = 0x2D
	ItemCutscene    ItemType = 0x2E
	ItemHookup      ItemType = 0x2F
	ItemVisibility  ItemType = 0x30
	ItemGate        ItemType = 0x31
)

var itemTypeNames = map[ItemType]string{
	ItemTerrain:        "terrain",
	ItemBuilding:       "building",
	ItemRoad:           "road",
	ItemPrefab:         "prefab",
	ItemModel:          "model",
	ItemCompany:        "company",
	ItemService:        "service",
	ItemCutPlane:       "cut_plane",
	ItemMover:          "mover",
	ItemNoWeather:      "no_weather",
	ItemCity:           "city",
	ItemHinge:          "hinge",
	ItemMapOverlay:     "map_overlay",
	ItemFerry:          "ferry",
	ItemSound:          "sound",
	ItemGarage:         "garage",
	ItemCameraPoint:    "camera_point",
	ItemTrigger:        "trigger",
	ItemFuelPump:       "fuel_pump",
	ItemRoadSideItem:   "road_side_item",
	ItemBusStop:        "bus_stop",
	ItemTrafficRule:    "traffic_rule",
	ItemBezierPatch:    "bezier_patch",
	ItemCompound:       "compound",
	ItemTrajectoryItem: "trajectory_item",
	ItemMapArea:        "map_area",
	ItemFarModel:       "far_model",
	ItemCurve:          "curve",
	ItemCamera:         "camera",
	ItemCutscene:       "cutscene",
	ItemHookup:         "hookup",
	ItemVisibility:     "visibility_area",
	ItemGate:           "gate",
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%x)", uint32(t))
}

// Retained reports whether items of this type are kept in the Map
func (t ItemType) Retained() bool {
	switch t {
	case ItemRoad, ItemPrefab, ItemCity, ItemMapOverlay, ItemFerry:
		return true
	}
	return false
}

// DecodedTypes lists every item type that has a decoder, in tag order
var DecodedTypes = []ItemType{
	ItemRoad,
	ItemPrefab,
	ItemCompany,
	ItemService,
	ItemCutPlane,
	ItemCity,
	ItemMapOverlay,
	ItemFerry,
	ItemGarage,
	ItemTrigger,
	ItemFuelPump,
	ItemRoadSideItem,
	ItemBusStop,
	ItemTrafficRule,
	ItemTrajectoryItem,
	ItemMapArea,
}
