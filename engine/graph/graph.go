package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/WessleyAI/wessley-vin/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// GraphStore provides vehicle graph operations on top of the generic Neo4j repository.
type GraphStore struct {
	opener        repo.SessionOpener
	vehicles      *repo.Neo4jRepo[Vehicle, string]
	manufacturers *repo.Neo4jRepo[Manufacturer, string]
	now           func() time.Time
}

// New creates a GraphStore backed by driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return NewWithOpener(repo.DriverOpener(driver))
}

// NewWithOpener creates a GraphStore that opens sessions through opener.
func NewWithOpener(opener repo.SessionOpener) *GraphStore {
	return &GraphStore{
		opener: opener,
		vehicles: repo.NewNeo4jRepo[Vehicle, string](opener, "Vehicle", vehicleToMap, vehicleFromRecord,
			repo.WithIDKey[Vehicle, string]("vin")),
		manufacturers: repo.NewNeo4jRepo[Manufacturer, string](opener, "Manufacturer", manufacturerToMap, manufacturerFromRecord,
			repo.WithIDKey[Manufacturer, string]("wmi")),
		now: time.Now,
	}
}

// EnsureSchema creates the uniqueness constraints the store relies on.
func (g *GraphStore) EnsureSchema(ctx context.Context) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	for _, cypher := range []string{
		`CREATE CONSTRAINT vehicle_vin IF NOT EXISTS FOR (v:Vehicle) REQUIRE v.vin IS UNIQUE`,
		`CREATE CONSTRAINT manufacturer_wmi IF NOT EXISTS FOR (m:Manufacturer) REQUIRE m.wmi IS UNIQUE`,
	} {
		if _, err := sess.Run(ctx, cypher, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func nodeFromRecord(rec *neo4j.Record, key string) (dbtype.Node, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, key)
	return node, err
}

func vehicleFromRecord(rec *neo4j.Record) (Vehicle, error) {
	node, err := nodeFromRecord(rec, "n")
	if err != nil {
		return Vehicle{}, err
	}
	return vehicleFromProps(node.Props), nil
}

func manufacturerFromRecord(rec *neo4j.Record) (Manufacturer, error) {
	node, err := nodeFromRecord(rec, "n")
	if err != nil {
		return Manufacturer{}, err
	}
	return manufacturerFromProps(node.Props), nil
}

func vehicleFromProps(props map[string]any) Vehicle {
	valid, _ := props["check_digit_valid"].(bool)
	return Vehicle{
		VIN:             strProp(props, "vin"),
		WMI:             strProp(props, "wmi"),
		VDS:             strProp(props, "vds"),
		VIS:             strProp(props, "vis"),
		Region:          strProp(props, "region"),
		Country:         strProp(props, "country"),
		Manufacturer:    strProp(props, "manufacturer"),
		ModelYear:       intProp(props, "model_year"),
		PlantCode:       strProp(props, "plant_code"),
		SerialNumber:    strProp(props, "serial_number"),
		CheckDigitValid: valid,
		DecodedAt:       strProp(props, "decoded_at"),
	}
}

func vehicleToMap(v Vehicle) map[string]any {
	m := map[string]any{
		"vin":               v.VIN,
		"wmi":               v.WMI,
		"vds":               v.VDS,
		"vis":               v.VIS,
		"region":            v.Region,
		"country":           v.Country,
		"manufacturer":      v.Manufacturer,
		"plant_code":        v.PlantCode,
		"serial_number":     v.SerialNumber,
		"check_digit_valid": v.CheckDigitValid,
		"decoded_at":        v.DecodedAt,
	}
	// Unresolved years are stored as a missing property, not 0.
	if v.ModelYear != 0 {
		m["model_year"] = v.ModelYear
	}
	return m
}

func manufacturerFromProps(props map[string]any) Manufacturer {
	return Manufacturer{
		WMI:     strProp(props, "wmi"),
		Name:    strProp(props, "name"),
		Region:  strProp(props, "region"),
		Country: strProp(props, "country"),
	}
}

func manufacturerToMap(m Manufacturer) map[string]any {
	return map[string]any{
		"wmi":     m.WMI,
		"name":    m.Name,
		"region":  m.Region,
		"country": m.Country,
	}
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
