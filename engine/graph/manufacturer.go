package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/repo"
)

// maxManufacturers caps a single LoadWMIs read.
const maxManufacturers = 10000

// SaveManufacturer creates or updates a Manufacturer node.
func (g *GraphStore) SaveManufacturer(ctx context.Context, m Manufacturer) error {
	m.WMI = vin.Normalize(m.WMI)
	return g.manufacturers.Upsert(ctx, m)
}

// GetManufacturer returns the Manufacturer node for a WMI.
func (g *GraphStore) GetManufacturer(ctx context.Context, wmi string) (Manufacturer, error) {
	return g.manufacturers.Get(ctx, vin.Normalize(wmi))
}

// Manufacturers lists Manufacturer nodes ordered by WMI.
func (g *GraphStore) Manufacturers(ctx context.Context, opts repo.ListOpts) ([]Manufacturer, error) {
	return g.manufacturers.List(ctx, opts)
}

// LoadWMIs returns the stored WMI→name table, ready for vin.RegisterWMIs.
func (g *GraphStore) LoadWMIs(ctx context.Context) (map[string]string, error) {
	items, err := g.manufacturers.List(ctx, repo.ListOpts{Limit: maxManufacturers})
	if err != nil {
		return nil, fmt.Errorf("load wmis: %w", err)
	}
	out := make(map[string]string, len(items))
	for _, m := range items {
		if m.WMI == "" || m.Name == "" {
			continue
		}
		out[m.WMI] = m.Name
	}
	return out, nil
}

// SeedManufacturers writes every entry of wmis as a Manufacturer node in a
// single transaction. Region and country are derived from the first WMI
// character.
func (g *GraphStore) SeedManufacturers(ctx context.Context, wmis map[string]string) (int, error) {
	keys := make([]string, 0, len(wmis))
	for k := range wmis {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	n := 0
	_, err := sess.ExecuteWrite(ctx, func(tx repo.Runner) (any, error) {
		for _, k := range keys {
			wmi := vin.Normalize(k)
			region, country := vin.RegionOf(wmi), vin.CountryOf(wmi)
			m := Manufacturer{WMI: wmi, Name: wmis[k], Region: region, Country: country}
			cypher := `MERGE (n:Manufacturer {wmi: $wmi}) SET n += $props`
			if _, err := tx.Run(ctx, cypher, map[string]any{"wmi": wmi, "props": manufacturerToMap(m)}); err != nil {
				return nil, err
			}
			n++
		}
		return nil, nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed manufacturers: %w", err)
	}
	return n, nil
}
