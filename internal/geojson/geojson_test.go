package geojson

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sample = `{
  "type": "FeatureCollection",
  "name": "Alps",
  "features": [
    {"type": "Feature", "id": "a1", "geometry": {"type": "Point", "coordinates": [10.7498, 47.5576]},
     "properties": {"title": "Schloss Neuschwanstein", "icon": "castle", "zoom": 12, "tags": ["a", "b"]}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[11.1, 47.1], [11.2, 47.2], [11.1, 47.1]]]},
     "properties": null},
    {"type": "Feature", "id": 7, "geometry": null, "properties": {"b": 1, "a": 2}}
  ]
}`

func TestDecode_PreservesOrderAndIDs(t *testing.T) {
	ds, err := Decode("in.geojson", []byte(sample))
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	r0 := ds.Records[0]
	assert.Equal(t, "a1", r0.ID)
	assert.True(t, r0.HasProps)
	assert.Equal(t, []string{"title", "icon", "zoom", "tags"}, r0.Props.Keys())
	title, ok := r0.Title("title")
	assert.True(t, ok)
	assert.Equal(t, "Schloss Neuschwanstein", title)

	assert.Equal(t, "#1", ds.Records[1].ID)
	assert.False(t, ds.Records[1].HasProps)

	assert.Equal(t, "7", ds.Records[2].ID)
	assert.Equal(t, []string{"b", "a"}, ds.Records[2].Props.Keys())
}

func TestDecode_InvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"type": "FeatureCollection", "features": [`,
		"top level array":  `[1, 2]`,
		"wrong type":       `{"type": "Feature", "features": []}`,
		"missing features": `{"type": "FeatureCollection"}`,
		"feature scalar":   `{"type": "FeatureCollection", "features": [1]}`,
		"props scalar":     `{"type": "FeatureCollection", "features": [{"properties": "x"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("bad.geojson", []byte(doc))
			require.Error(t, err)
			assert.True(t, IsInputError(err), "期望 InputError，实际：%T %v", err, err)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncode_SplicesPropertiesOnly(t *testing.T) {
	ds, err := Decode("in.geojson", []byte(sample))
	require.NoError(t, err)

	r0 := ds.Records[0]
	r0.Props.Delete("icon")
	r0.Props.SetString("Wikipedia", "https://de.wikipedia.org/wiki/Schloss_Neuschwanstein")

	out, err := Encode(ds)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(out))

	doc := gjson.ParseBytes(out)
	assert.Equal(t, "Alps", doc.Get("name").String())
	assert.Equal(t, 3, len(doc.Get("features").Array()))

	p0 := doc.Get("features.0.properties")
	var keys []string
	p0.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"title", "zoom", "tags", "Wikipedia"}, keys)
	assert.Equal(t, 10.7498, doc.Get("features.0.geometry.coordinates.0").Float())
	assert.Equal(t, gjson.Null, doc.Get("features.1.properties").Type)
	assert.Equal(t, int64(7), doc.Get("features.2.id").Int())
}

func TestEncode_Stable(t *testing.T) {
	ds, err := Decode("in.geojson", []byte(sample))
	require.NoError(t, err)
	first, err := Encode(ds)
	require.NoError(t, err)

	again, err := Decode("out.geojson", first)
	require.NoError(t, err)
	second, err := Encode(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestEncode_KeepsNonASCII(t *testing.T) {
	ds, err := Decode("in.geojson", []byte(`{"type":"FeatureCollection","features":[{"properties":{"title":"x"}}]}`))
	require.NoError(t, err)
	ds.Records[0].Props.SetString("title", "München <Altstadt>")

	out, err := Encode(ds)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"München <Altstadt>"`)
}
