package domain

type AddOnKey string

const (
	AddOnInsideFridge    AddOnKey = "insideFridge"
	AddOnInsideOven      AddOnKey = "insideOven"
	AddOnInteriorWindows AddOnKey = "interiorWindows"
	AddOnInsideCabinets  AddOnKey = "insideCabinets"
	AddOnDeepCleaning    AddOnKey = "deepCleaning"
	AddOnOrganizing      AddOnKey = "organizing"
	AddOnMoveInOut       AddOnKey = "moveInOut"
)

type AddOn struct {
	Key   AddOnKey `json:"key"`
	Label string   `json:"label"`
	Price int      `json:"price"` // whole USD
}

// Catalog is the fixed add-on menu. Prices change with a deploy, not at
// runtime.
var Catalog = []AddOn{
	{Key: AddOnInsideFridge, Label: "Inside fridge", Price: 45},
	{Key: AddOnInsideOven, Label: "Inside oven", Price: 45},
	{Key: AddOnInteriorWindows, Label: "Interior windows", Price: 85},
	{Key: AddOnInsideCabinets, Label: "Inside cabinets", Price: 66},
	{Key: AddOnDeepCleaning, Label: "Deep cleaning", Price: 50},
	{Key: AddOnOrganizing, Label: "Organizing", Price: 70},
	{Key: AddOnMoveInOut, Label: "Move In/Out", Price: 200},
}

// AddOnByKey looks up a catalog entry; unknown keys are silently absent so a
// stale stored booking cannot price phantom extras.
func AddOnByKey(key AddOnKey) (AddOn, bool) {
	for _, a := range Catalog {
		if a.Key == key {
			return a, true
		}
	}
	return AddOn{}, false
}
