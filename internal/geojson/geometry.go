package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/gjson"
)

// Geometry 把 GeoJSON geometry 解码为 orb 几何，只用于报告（记录里的几何永不改写）。
// 类型未知或坐标不合法时返回 false。
func Geometry(raw json.RawMessage) (orb.Geometry, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil, false
	}
	return decodeGeometry(gjson.ParseBytes(raw))
}

func decodeGeometry(g gjson.Result) (orb.Geometry, bool) {
	c := g.Get("coordinates")
	switch g.Get("type").String() {
	case "Point":
		return decodePoint(c)
	case "MultiPoint":
		ps, ok := decodePoints(c)
		return orb.MultiPoint(ps), ok
	case "LineString":
		ps, ok := decodePoints(c)
		return orb.LineString(ps), ok
	case "MultiLineString":
		if !c.IsArray() {
			return nil, false
		}
		var mls orb.MultiLineString
		for _, l := range c.Array() {
			ps, ok := decodePoints(l)
			if !ok {
				return nil, false
			}
			mls = append(mls, orb.LineString(ps))
		}
		return mls, true
	case "Polygon":
		return decodePolygon(c)
	case "MultiPolygon":
		if !c.IsArray() {
			return nil, false
		}
		var mp orb.MultiPolygon
		for _, p := range c.Array() {
			poly, ok := decodePolygon(p)
			if !ok {
				return nil, false
			}
			mp = append(mp, poly)
		}
		return mp, true
	case "GeometryCollection":
		geoms := g.Get("geometries")
		if !geoms.IsArray() {
			return nil, false
		}
		var col orb.Collection
		for _, sub := range geoms.Array() {
			x, ok := decodeGeometry(sub)
			if !ok {
				return nil, false
			}
			col = append(col, x)
		}
		return col, true
	}
	return nil, false
}

func decodePoint(c gjson.Result) (orb.Point, bool) {
	if !c.IsArray() {
		return orb.Point{}, false
	}
	arr := c.Array()
	if len(arr) < 2 || arr[0].Type != gjson.Number || arr[1].Type != gjson.Number {
		return orb.Point{}, false
	}
	return orb.Point{arr[0].Float(), arr[1].Float()}, true
}

func decodePoints(c gjson.Result) ([]orb.Point, bool) {
	if !c.IsArray() {
		return nil, false
	}
	var ps []orb.Point
	for _, x := range c.Array() {
		p, ok := decodePoint(x)
		if !ok {
			return nil, false
		}
		ps = append(ps, p)
	}
	return ps, true
}

func decodePolygon(c gjson.Result) (orb.Polygon, bool) {
	if !c.IsArray() {
		return nil, false
	}
	var poly orb.Polygon
	for _, r := range c.Array() {
		ps, ok := decodePoints(r)
		if !ok {
			return nil, false
		}
		poly = append(poly, orb.Ring(ps))
	}
	return poly, true
}

// firstPoint 返回几何中按书写顺序的第一个坐标。
func firstPoint(g orb.Geometry) (orb.Point, bool) {
	switch g := g.(type) {
	case orb.Point:
		return g, true
	case orb.MultiPoint:
		return firstOf(g)
	case orb.LineString:
		return firstOf(g)
	case orb.MultiLineString:
		for _, l := range g {
			if p, ok := firstOf(l); ok {
				return p, true
			}
		}
	case orb.Polygon:
		for _, r := range g {
			if p, ok := firstOf(r); ok {
				return p, true
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			if p, ok := firstPoint(poly); ok {
				return p, true
			}
		}
	case orb.Collection:
		for _, x := range g {
			if p, ok := firstPoint(x); ok {
				return p, true
			}
		}
	}
	return orb.Point{}, false
}

func firstOf(ps []orb.Point) (orb.Point, bool) {
	if len(ps) == 0 {
		return orb.Point{}, false
	}
	return ps[0], true
}

// GeometryHint 返回几何的简短描述（类型 + 首个坐标），用于报告；无法识别时返回空串。
func GeometryHint(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	typ := gjson.GetBytes(raw, "type").String()
	if typ == "" {
		return ""
	}
	g, ok := Geometry(raw)
	if !ok {
		return typ
	}
	p, ok := firstPoint(g)
	if !ok {
		return typ
	}
	return fmt.Sprintf("%s(%.5f, %.5f)", g.GeoJSONType(), p.Lon(), p.Lat())
}

// Location 返回几何外包框的中心点（点几何就是它自己）。
func Location(raw json.RawMessage) (orb.Point, bool) {
	g, ok := Geometry(raw)
	if !ok {
		return orb.Point{}, false
	}
	if _, ok := firstPoint(g); !ok {
		return orb.Point{}, false
	}
	return g.Bound().Center(), true
}

// Spread 返回各几何位置之间的最大球面距离（米）。任一几何缺失或无法解析时返回 false。
func Spread(raws []json.RawMessage) (float64, bool) {
	pts := make([]orb.Point, 0, len(raws))
	for _, raw := range raws {
		p, ok := Location(raw)
		if !ok {
			return 0, false
		}
		pts = append(pts, p)
	}
	max := 0.0
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if d := geo.Distance(pts[i], pts[j]); d > max {
				max = d
			}
		}
	}
	return max, true
}
