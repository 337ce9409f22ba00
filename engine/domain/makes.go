package domain

import (
	"strings"
	"time"
)

// SupportedMakes maps make names to their known models. Make names are
// spelled the way the WMI registry spells manufacturers.
var SupportedMakes = map[string][]string{
	"Acura":         {"TLX", "MDX", "RDX", "Integra"},
	"Audi":          {"A3", "A4", "A6", "Q3", "Q5", "Q7", "Q8", "e-tron", "RS6", "TT"},
	"BMW":           {"3 Series", "5 Series", "7 Series", "X3", "X5", "X7", "M3", "M5", "i4", "iX"},
	"Cadillac":      {"CT4", "CT5", "Escalade", "Lyriq", "XT4", "XT5"},
	"Chevrolet":     {"Silverado", "Equinox", "Malibu", "Traverse", "Tahoe", "Suburban", "Colorado", "Camaro", "Corvette", "Blazer"},
	"Chrysler":      {"300", "Pacifica", "Voyager"},
	"Dodge":         {"Charger", "Challenger", "Durango", "Hornet"},
	"Ford":          {"F-150", "Mustang", "Explorer", "Escape", "Ranger", "Bronco", "Edge", "Expedition", "Maverick", "Focus", "Fusion"},
	"GMC":           {"Sierra", "Terrain", "Acadia", "Yukon", "Canyon"},
	"Honda":         {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "HR-V", "Ridgeline", "Fit", "Insight"},
	"Hyundai":       {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona", "Palisade", "Ioniq 5", "Venue"},
	"Jeep":          {"Wrangler", "Grand Cherokee", "Cherokee", "Compass", "Renegade", "Gladiator", "Wagoneer"},
	"Kia":           {"Forte", "K5", "Sportage", "Telluride", "Sorento", "Soul", "Seltos", "EV6", "Carnival"},
	"Lexus":         {"ES", "IS", "RX", "NX", "GX", "LS", "LC", "UX"},
	"Mazda":         {"Mazda3", "Mazda6", "CX-5", "CX-9", "CX-30", "CX-50", "MX-5 Miata"},
	"Mercedes-Benz": {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "GLS", "A-Class", "CLA", "AMG GT"},
	"Nissan":        {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Maxima", "Murano", "Kicks", "Leaf"},
	"Porsche":       {"911", "Cayenne", "Macan", "Panamera", "Taycan"},
	"Ram":           {"1500", "2500", "3500", "ProMaster"},
	"Subaru":        {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy", "Ascent", "BRZ"},
	"Tesla":         {"Model 3", "Model Y", "Model S", "Model X", "Cybertruck"},
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma", "Tundra", "4Runner", "Prius", "Supra", "Avalon"},
	"Volkswagen":    {"Golf", "Jetta", "Tiguan", "Atlas", "ID.4", "Passat", "Taos", "Arteon"},
	"Volvo":         {"XC40", "XC60", "XC90", "S60", "V60"},
}

// manufacturerMakes lists registry manufacturers that build under more than
// their own name. Manufacturers not listed build only their own make.
var manufacturerMakes = map[string][]string{
	"BMW M":     {"BMW"},
	"Chrysler":  {"Chrysler", "Dodge", "Jeep", "Ram"},
	"Chevrolet": {"Chevrolet", "GMC", "Cadillac"},
	"Honda":     {"Honda", "Acura"},
	"Toyota":    {"Toyota", "Lexus"},
}

// MakeMatches reports whether a registry manufacturer name can carry make mk.
// Comparison ignores case.
func MakeMatches(manufacturer, mk string) bool {
	for _, m := range manufacturerMakes[manufacturer] {
		if strings.EqualFold(m, mk) {
			return true
		}
	}
	return strings.EqualFold(manufacturer, mk)
}

// MinModelYear is the earliest year we accept.
const MinModelYear = 1980

// now is the clock behind MaxModelYear.
var now = time.Now

// MaxModelYear is the latest year we accept: next year's models are already
// on sale. It tracks the same clock as the decoder's default year window.
func MaxModelYear() int { return now().Year() + 1 }
