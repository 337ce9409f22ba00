package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/repo"
)

// ErrVehicleNotFound is returned by FindVehicle when no node has the VIN.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleFromResult converts a decode result into its stored form.
func VehicleFromResult(r vin.Result) Vehicle {
	return Vehicle{
		VIN:             r.VIN,
		WMI:             r.WMI,
		VDS:             r.VDS,
		VIS:             r.VIS,
		Region:          r.Region,
		Country:         r.Country,
		Manufacturer:    r.Manufacturer,
		ModelYear:       r.ModelYear,
		PlantCode:       r.PlantCode,
		SerialNumber:    r.SerialNumber,
		CheckDigitValid: r.CheckDigit.Valid,
	}
}

// SaveVehicle merges the vehicle and its manufacturer in one transaction and
// links them with MADE_BY. The manufacturer name is only set when the node is
// created, so names loaded from a curated source are not overwritten by
// approximate matches.
func (g *GraphStore) SaveVehicle(ctx context.Context, r vin.Result) error {
	v := VehicleFromResult(r)
	v.DecodedAt = g.now().UTC().Format(time.RFC3339)

	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx repo.Runner) (any, error) {
		cypher := `MERGE (m:Manufacturer {wmi: $wmi})
		           ON CREATE SET m.name = $name, m.region = $region, m.country = $country`
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"wmi":     v.WMI,
			"name":    v.Manufacturer,
			"region":  v.Region,
			"country": v.Country,
		}); err != nil {
			return nil, err
		}

		cypher = `MERGE (v:Vehicle {vin: $vin}) SET v += $props
		          WITH v
		          MATCH (m:Manufacturer {wmi: $wmi})
		          MERGE (v)-[:MADE_BY]->(m)`
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"vin":   v.VIN,
			"wmi":   v.WMI,
			"props": vehicleToMap(v),
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save vehicle %s: %w", v.VIN, err)
	}
	return nil
}

// FindVehicle returns the stored vehicle for a VIN. The VIN is normalized
// before lookup.
func (g *GraphStore) FindVehicle(ctx context.Context, raw string) (Vehicle, error) {
	v, err := g.vehicles.Get(ctx, vin.Normalize(raw))
	if errors.Is(err, repo.ErrNotFound) {
		return Vehicle{}, fmt.Errorf("%s: %w", vin.Normalize(raw), ErrVehicleNotFound)
	}
	return v, err
}

// DeleteVehicle removes a vehicle node and its relationships.
func (g *GraphStore) DeleteVehicle(ctx context.Context, raw string) error {
	return g.vehicles.Delete(ctx, vin.Normalize(raw))
}

// VehiclesByManufacturer lists vehicles stored under a WMI, ordered by VIN.
func (g *GraphStore) VehiclesByManufacturer(ctx context.Context, wmi string, limit int) ([]Vehicle, error) {
	if limit <= 0 {
		limit = 100
	}
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:Vehicle)-[:MADE_BY]->(:Manufacturer {wmi: $wmi})
	           RETURN n ORDER BY n.vin LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"wmi": vin.Normalize(wmi), "limit": limit})
	if err != nil {
		return nil, err
	}
	var items []Vehicle
	for result.Next(ctx) {
		v, err := vehicleFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
