package track

// Track-type tags, §6 of the specification.
const (
	RTypeA Type = iota
	RTypeB
	ProtecLongtrack
	GremlinLongtrack
	TiertexLongtrack
	CrystalsOfArboreaLongtrack
	InfogramesLongtrack
	BatLongtrack
	AppLongtrack
	SevenCitiesLongtrack
	EmptyLongtrack
)

var typeNames = map[Type]string{
	RTypeA:                     "rtype_a",
	RTypeB:                     "rtype_b",
	ProtecLongtrack:            "protec_longtrack",
	GremlinLongtrack:           "gremlin_longtrack",
	TiertexLongtrack:           "tiertex_longtrack",
	CrystalsOfArboreaLongtrack: "crystals_of_arborea_longtrack",
	InfogramesLongtrack:        "infogrames_longtrack",
	BatLongtrack:               "bat_longtrack",
	AppLongtrack:               "app_longtrack",
	SevenCitiesLongtrack:       "sevencities_longtrack",
	EmptyLongtrack:             "empty_longtrack",
}
