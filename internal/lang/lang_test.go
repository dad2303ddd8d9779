package lang

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/John-Robertt/geoclean/internal/domain"
)

func bag(kv ...string) domain.Properties {
	var p domain.Properties
	for i := 0; i+1 < len(kv); i += 2 {
		p = append(p, domain.Property{Key: kv[i], Value: json.RawMessage(kv[i+1])})
	}
	return p
}

func TestDetect_DefaultsToBaseAndSecondary(t *testing.T) {
	d := New("en", "de", 4)
	assert.Equal(t, []string{"en", "de"}, d.Detect("Eiffel", nil))
}

func TestDetect_ExplicitLocaleFirst(t *testing.T) {
	d := New("en", "de", 4)
	got := d.Detect("Castello Sforzesco", bag("title", `"Castello Sforzesco"`, "locale", `"fr_CH"`))
	assert.Equal(t, []string{"fr", "it", "en", "de"}, got)
}

func TestDetect_CodedFields(t *testing.T) {
	d := New("en", "de", 4)
	got := d.Detect("Prague Castle", bag("name:cs", `"Pražský hrad"`, "name_xx", `""`, "name:de", `"Prager Burg"`))
	assert.Equal(t, []string{"cs", "de", "en"}, got)
}

func TestDetect_RegionProperty(t *testing.T) {
	d := New("en", "de", 4)
	assert.Equal(t, []string{"nl", "en", "de"}, d.Detect("Zaanse Schans", bag("country", `"NL"`)))
	assert.Equal(t, []string{"da", "en", "de"}, d.Detect("Kronborg", bag("Country", `"Denmark"`)))
	assert.Equal(t, []string{"en", "de"}, d.Detect("Somewhere", bag("country", `"Atlantis"`)))
}

func TestDetect_Script(t *testing.T) {
	d := New("en", "de", 4)
	assert.Equal(t, []string{"ru", "en", "de"}, d.Detect("Красная площадь", nil))
	assert.Equal(t, []string{"el", "en", "de"}, d.Detect("Ακρόπολη", nil))
	assert.Equal(t, []string{"ja", "en", "de"}, d.Detect("清水寺 きよみずでら", nil))
}

func TestDetect_TitleHints(t *testing.T) {
	d := New("en", "de", 4)
	// 变音字母 + 地点类型词
	assert.Equal(t, []string{"cs", "en", "de"}, d.Detect("Hrad Křivoklát", nil))
	assert.Equal(t, []string{"it", "en", "de"}, d.Detect("Castello di Miramare", nil))
	// 地名
	assert.Equal(t, []string{"fr", "en", "de"}, d.Detect("Musée des Beaux-Arts de Lyon", nil))
	assert.Equal(t, []string{"de", "en"}, d.Detect("Schloss Neuschwanstein", nil))
}

func TestDetect_CapKeepsFallbacks(t *testing.T) {
	d := New("en", "de", 3)
	got := d.Detect("Castello", bag("locale", `"fr"`, "country", `"ES"`))
	assert.Equal(t, []string{"fr", "en", "de"}, got)
	assert.Len(t, got, 3)

	// 上限小于回退语言数时，Secondary 让位，Base 始终在。
	got = New("en", "de", 1).Detect("Château de Versailles", nil)
	assert.Equal(t, []string{"en"}, got)

	got = New("en", "de", 1).Detect("Schloss", bag("locale", `"de"`))
	assert.Equal(t, []string{"en"}, got)

	got = New("en", "de", 2).Detect("Château de Versailles", bag("locale", `"fr"`))
	assert.Equal(t, []string{"en", "de"}, got)
}

func TestDetect_DeduplicatesFallbackHint(t *testing.T) {
	d := New("en", "de", 4)
	got := d.Detect("Tower Bridge", bag("lang", `"en-GB"`))
	assert.Equal(t, []string{"en", "de"}, got)
}

func TestRegionLanguage(t *testing.T) {
	assert.Equal(t, "de", regionLanguage("CH"))
	assert.Equal(t, "cs", regionLanguage("czechia"))
	assert.Equal(t, "no", regionLanguage("NO"))
	assert.Equal(t, "", regionLanguage("nowhere"))
}
