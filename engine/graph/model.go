// Package graph stores decoded vehicles and their manufacturers in Neo4j.
package graph

// Vehicle is a decoded VIN persisted as a (:Vehicle) node.
type Vehicle struct {
	VIN             string `json:"vin"`
	WMI             string `json:"wmi"`
	VDS             string `json:"vds"`
	VIS             string `json:"vis"`
	Region          string `json:"region"`
	Country         string `json:"country,omitempty"`
	Manufacturer    string `json:"manufacturer"`
	ModelYear       int    `json:"model_year,omitempty"`
	PlantCode       string `json:"plant_code"`
	SerialNumber    string `json:"serial_number"`
	CheckDigitValid bool   `json:"check_digit_valid"`
	DecodedAt       string `json:"decoded_at,omitempty"`
}

// Manufacturer is a (:Manufacturer) node keyed by its WMI.
type Manufacturer struct {
	WMI     string `json:"wmi"`
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// ManufacturerStats counts the vehicles stored for one manufacturer.
type ManufacturerStats struct {
	WMI      string `json:"wmi"`
	Name     string `json:"name"`
	Vehicles int64  `json:"vehicles"`
}
