package translate

// Languages 是词表覆盖的语言（顺序即表格列顺序）。
var Languages = []string{"en", "de", "fr", "es", "it", "nl", "da", "cs"}

// concept 是一个地点类型在各语言中的写法（小写；多词用单个空格分隔）。
type concept struct {
	name  string
	forms map[string]string
}

var defaultConcepts = []concept{
	{"church", map[string]string{"en": "church", "de": "kirche", "fr": "église", "es": "iglesia", "it": "chiesa", "nl": "kerk", "da": "kirke", "cs": "kostel"}},
	{"cathedral", map[string]string{"en": "cathedral", "de": "dom", "fr": "cathédrale", "es": "catedral", "it": "cattedrale", "nl": "kathedraal", "da": "domkirke", "cs": "katedrála"}},
	{"museum", map[string]string{"en": "museum", "de": "museum", "fr": "musée", "es": "museo", "it": "museo", "nl": "museum", "da": "museum", "cs": "muzeum"}},
	{"castle", map[string]string{"en": "castle", "de": "schloss", "fr": "château", "es": "castillo", "it": "castello", "nl": "kasteel", "da": "slot", "cs": "hrad"}},
	{"fortress", map[string]string{"en": "fortress", "de": "burg", "fr": "forteresse", "es": "fortaleza", "it": "fortezza", "nl": "burcht", "da": "borg", "cs": "pevnost"}},
	{"palace", map[string]string{"en": "palace", "de": "palast", "fr": "palais", "es": "palacio", "it": "palazzo", "nl": "paleis", "da": "palads", "cs": "palác"}},
	{"monastery", map[string]string{"en": "monastery", "de": "kloster", "fr": "monastère", "es": "monasterio", "it": "monastero", "nl": "klooster", "da": "kloster", "cs": "klášter"}},
	{"bridge", map[string]string{"en": "bridge", "de": "brücke", "fr": "pont", "es": "puente", "it": "ponte", "nl": "brug", "da": "bro", "cs": "most"}},
	{"tower", map[string]string{"en": "tower", "de": "turm", "fr": "tour", "es": "torre", "it": "torre", "nl": "toren", "da": "tårn", "cs": "věž"}},
	{"square", map[string]string{"en": "square", "de": "platz", "fr": "place", "es": "plaza", "it": "piazza", "nl": "plein", "da": "plads", "cs": "náměstí"}},
	{"park", map[string]string{"en": "park", "de": "park", "fr": "parc", "es": "parque", "it": "parco", "nl": "park", "da": "park", "cs": "park"}},
	{"national park", map[string]string{"en": "national park", "de": "nationalpark", "fr": "parc national", "es": "parque nacional", "it": "parco nazionale", "nl": "nationaal park", "da": "nationalpark", "cs": "národní park"}},
	{"garden", map[string]string{"en": "garden", "de": "garten", "fr": "jardin", "es": "jardín", "it": "giardino", "nl": "tuin", "da": "have", "cs": "zahrada"}},
	{"viewpoint", map[string]string{"en": "viewpoint", "de": "aussichtspunkt", "fr": "belvédère", "es": "mirador", "it": "belvedere", "nl": "uitkijkpunt", "da": "udsigtspunkt", "cs": "vyhlídka"}},
	{"lake", map[string]string{"en": "lake", "de": "see", "fr": "lac", "es": "lago", "it": "lago", "nl": "meer", "da": "sø", "cs": "jezero"}},
	{"waterfall", map[string]string{"en": "waterfall", "de": "wasserfall", "fr": "cascade", "es": "cascada", "it": "cascata", "nl": "waterval", "da": "vandfald", "cs": "vodopád"}},
	{"cave", map[string]string{"en": "cave", "de": "höhle", "fr": "grotte", "es": "cueva", "it": "grotta", "nl": "grot", "da": "grotte", "cs": "jeskyně"}},
	{"station", map[string]string{"en": "station", "de": "bahnhof", "fr": "gare", "es": "estación", "it": "stazione", "nl": "station", "da": "station", "cs": "nádraží"}},
	{"airport", map[string]string{"en": "airport", "de": "flughafen", "fr": "aéroport", "es": "aeropuerto", "it": "aeroporto", "nl": "luchthaven", "da": "lufthavn", "cs": "letiště"}},
	{"university", map[string]string{"en": "university", "de": "universität", "fr": "université", "es": "universidad", "it": "università", "nl": "universiteit", "da": "universitet", "cs": "univerzita"}},
	{"library", map[string]string{"en": "library", "de": "bibliothek", "fr": "bibliothèque", "es": "biblioteca", "it": "biblioteca", "nl": "bibliotheek", "da": "bibliotek", "cs": "knihovna"}},
	{"theater", map[string]string{"en": "theater", "de": "theater", "fr": "théâtre", "es": "teatro", "it": "teatro", "nl": "theater", "da": "teater", "cs": "divadlo"}},
	{"opera", map[string]string{"en": "opera", "de": "oper", "fr": "opéra", "es": "ópera", "it": "opera", "nl": "opera", "da": "opera", "cs": "opera"}},
	{"market", map[string]string{"en": "market", "de": "markt", "fr": "marché", "es": "mercado", "it": "mercato", "nl": "markt", "da": "marked", "cs": "trh"}},
	{"street", map[string]string{"en": "street", "de": "straße", "fr": "rue", "es": "calle", "it": "via", "nl": "straat", "da": "gade", "cs": "ulice"}},
	{"old town", map[string]string{"en": "old town", "de": "altstadt", "fr": "vieille ville", "es": "casco antiguo", "it": "centro storico", "nl": "oude stad", "da": "gamle by", "cs": "staré město"}},
	{"city center", map[string]string{"en": "city center", "de": "stadtzentrum", "fr": "centre-ville", "es": "centro de la ciudad", "it": "centro città", "nl": "stadscentrum", "da": "bymidte", "cs": "centrum města"}},
	{"town hall", map[string]string{"en": "town hall", "de": "rathaus", "fr": "hôtel de ville", "es": "ayuntamiento", "it": "municipio", "nl": "stadhuis", "da": "rådhus", "cs": "radnice"}},
}

// ambiguousForms 是与常见英文单词同形的非英语写法：只有在作为英文写法出现时才识别。
var ambiguousForms = map[string]bool{
	"most":  true, // cs bridge
	"tour":  true, // fr tower
	"place": true, // fr square
	"have":  true, // da garden
	"slot":  true, // da castle
	"bro":   true, // da bridge
	"via":   true, // it street
	"see":   true, // de lake
	"meer":  true, // nl lake / de sea
	"rue":   true, // fr street
}
