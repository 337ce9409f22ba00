package vin

// Length is the number of characters in a modern (1981+) VIN.
const Length = 17

// Positions within a normalized VIN.
const (
	checkDigitPos = 8
	yearPos       = 9
	plantPos      = 10
)

// baseModelYear is the year encoded by the first symbol of the year cycle.
const baseModelYear = 1980

// yearCycle is the length of the model-year code cycle.
const yearCycle = 30

// transliteration maps each allowed character to its check-digit value.
var transliteration = map[byte]int{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// weights are the positional multipliers. The check digit slot weighs 0.
var weights = [Length]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// yearCodes is the 30-symbol model-year sequence starting at 1980.
const yearCodes = "ABCDEFGHJKLMNPRSTVWXY123456789"

// Region labels.
const (
	RegionAfrica       = "Africa"
	RegionAsia         = "Asia"
	RegionEurope       = "Europe"
	RegionNorthAmerica = "North America"
	RegionOceania      = "Oceania"
	RegionSouthAmerica = "South America"
	RegionUnknown      = "Unknown"
)

// regionOf returns the world region encoded by the first VIN character.
func regionOf(c byte) string {
	switch {
	case c >= 'A' && c <= 'H':
		return RegionAfrica
	case c >= 'J' && c <= 'R':
		return RegionAsia
	case c >= 'S' && c <= 'Z':
		return RegionEurope
	case c >= '1' && c <= '5':
		return RegionNorthAmerica
	case c == '6' || c == '7':
		return RegionOceania
	case c == '8' || c == '9':
		return RegionSouthAmerica
	default:
		return RegionUnknown
	}
}

// isNorthAmerica reports whether the first VIN character is a North American code.
func isNorthAmerica(c byte) bool { return c >= '1' && c <= '5' }

// countries labels the most common first characters. Unlisted ones stay blank.
var countries = map[byte]string{
	'1': "United States",
	'2': "Canada",
	'3': "Mexico",
	'4': "United States",
	'5': "United States",
	'6': "Australia",
	'9': "Brazil",
	'J': "Japan",
	'K': "South Korea",
	'L': "China",
	'S': "United Kingdom",
	'V': "France/Spain",
	'W': "Germany",
	'Y': "Sweden/Finland",
	'Z': "Italy",
}

// baseWMIs seeds the manufacturer registry.
var baseWMIs = map[string]string{
	// North America
	"19U": "Acura",
	"19X": "Honda",
	"1C3": "Chrysler",
	"1C4": "Chrysler",
	"1C6": "Ram",
	"1FA": "Ford",
	"1FM": "Ford",
	"1FT": "Ford",
	"1G1": "Chevrolet",
	"1G6": "Cadillac",
	"1GC": "Chevrolet",
	"1GN": "Chevrolet",
	"1GT": "GMC",
	"1HD": "Harley-Davidson",
	"1HG": "Honda",
	"1J4": "Jeep",
	"1N4": "Nissan",
	"1N6": "Nissan",
	"1VW": "Volkswagen",
	"1YV": "Mazda",
	"2C3": "Chrysler",
	"2FA": "Ford",
	"2G1": "Chevrolet",
	"2HG": "Honda",
	"2HK": "Honda",
	"2T1": "Toyota",
	"2T3": "Toyota",
	"3FA": "Ford",
	"3G1": "Chevrolet",
	"3HG": "Honda",
	"3N1": "Nissan",
	"3VW": "Volkswagen",
	"4JG": "Mercedes-Benz",
	"4S3": "Subaru",
	"4S4": "Subaru",
	"4T1": "Toyota",
	"4T4": "Toyota",
	"5FN": "Honda",
	"5N1": "Nissan",
	"5NP": "Hyundai",
	"5TD": "Toyota",
	"5UX": "BMW",
	"5XY": "Kia",
	"5YJ": "Tesla",
	"7SA": "Tesla",
	// Asia
	"JA3": "Mitsubishi",
	"JF1": "Subaru",
	"JF2": "Subaru",
	"JH4": "Acura",
	"JHM": "Honda",
	"JM1": "Mazda",
	"JN1": "Nissan",
	"JN8": "Nissan",
	"JS1": "Suzuki",
	"JT2": "Toyota",
	"JTD": "Toyota",
	"JTE": "Toyota",
	"JTH": "Lexus",
	"KMH": "Hyundai",
	"KNA": "Kia",
	"KND": "Kia",
	"LRW": "Tesla",
	// Europe
	"SAJ": "Jaguar",
	"SAL": "Land Rover",
	"SCC": "Lotus",
	"SCF": "Aston Martin",
	"VF1": "Renault",
	"VF3": "Peugeot",
	"VF7": "Citroen",
	"W0L": "Opel",
	"WAU": "Audi",
	"WBA": "BMW",
	"WBS": "BMW M",
	"WDB": "Mercedes-Benz",
	"WDD": "Mercedes-Benz",
	"WF0": "Ford",
	"WP0": "Porsche",
	"WP1": "Porsche",
	"WVG": "Volkswagen",
	"WVW": "Volkswagen",
	"YS3": "Saab",
	"YV1": "Volvo",
	"YV4": "Volvo",
	"ZAM": "Maserati",
	"ZAR": "Alfa Romeo",
	"ZFA": "Fiat",
	"ZFF": "Ferrari",
	"ZHW": "Lamborghini",
	// Oceania / South America
	"6G1": "Holden",
	"9BW": "Volkswagen",
}

// RegionOf returns the world region for the first character of s, which may
// be a full VIN or just a WMI.
func RegionOf(s string) string {
	s = Normalize(s)
	if s == "" {
		return RegionUnknown
	}
	return regionOf(s[0])
}

// CountryOf returns the country label for the first character of s, or "".
func CountryOf(s string) string {
	s = Normalize(s)
	if s == "" {
		return ""
	}
	return countries[s[0]]
}
