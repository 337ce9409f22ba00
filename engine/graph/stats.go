package graph

import (
	"context"
)

// NodeCounts returns node counts grouped by label.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n) WHERE n:Vehicle OR n:Manufacturer
	           RETURN labels(n)[0] AS type, count(*) AS count`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		typ, _ := rec.Get("type")
		cnt, _ := rec.Get("count")
		if t, ok := typ.(string); ok {
			if c, ok := cnt.(int64); ok {
				counts[t] = c
			}
		}
	}
	return counts, nil
}

// TopManufacturers returns manufacturers ordered by stored vehicle count.
func (g *GraphStore) TopManufacturers(ctx context.Context, limit int) ([]ManufacturerStats, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (m:Manufacturer)<-[:MADE_BY]-(v:Vehicle)
	           RETURN m.wmi AS wmi, m.name AS name, count(v) AS vehicles
	           ORDER BY vehicles DESC, wmi LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	var stats []ManufacturerStats
	for result.Next(ctx) {
		rec := result.Record()
		wmi, _ := rec.Get("wmi")
		name, _ := rec.Get("name")
		cnt, _ := rec.Get("vehicles")
		s := ManufacturerStats{}
		s.WMI, _ = wmi.(string)
		s.Name, _ = name.(string)
		s.Vehicles, _ = cnt.(int64)
		stats = append(stats, s)
	}
	return stats, nil
}
