package lang

// regionKeywords 是标题中常见的地名（城市/国家），命中时提示对应语言。
var regionKeywords = map[string][]string{
	"de": {
		"deutschland", "germany", "österreich", "austria", "schweiz", "switzerland",
		"wien", "vienna", "berlin", "münchen", "munich", "zürich", "salzburg",
		"innsbruck", "graz", "linz", "bern", "basel", "hamburg", "köln",
		"cologne", "frankfurt", "stuttgart", "düsseldorf", "dortmund",
		"bremen", "dresden", "hannover", "nürnberg", "nuremberg",
	},
	"fr": {
		"france", "paris", "lyon", "marseille", "toulouse", "nantes",
		"strasbourg", "montpellier", "bordeaux", "lille", "rennes", "reims",
		"le havre", "saint-étienne", "toulon", "grenoble", "dijon", "angers",
		"nîmes", "rouen", "mulhouse", "caen", "nancy", "metz", "versailles",
		"amiens", "limoges", "aix-en-provence", "avignon", "poitiers", "genève", "geneva",
	},
	"nl": {
		"netherlands", "nederland", "holland", "amsterdam", "rotterdam", "the hague", "den haag",
		"utrecht", "eindhoven", "tilburg", "groningen", "breda", "nijmegen",
		"haarlem", "arnhem", "maastricht", "leiden", "delft", "zwolle", "deventer",
	},
	"da": {
		"denmark", "danmark", "copenhagen", "københavn", "aarhus", "odense", "aalborg", "esbjerg",
		"randers", "kolding", "horsens", "vejle", "roskilde", "silkeborg",
		"næstved", "fredericia", "viborg", "køge", "hillerød", "sønderborg", "svendborg",
	},
	"cs": {
		"czech republic", "czechia", "česko", "prague", "praha", "brno", "ostrava", "plzeň", "plzen",
		"liberec", "olomouc", "české budějovice", "hradec králové", "pardubice", "zlín",
		"karlovy vary", "český krumlov", "kutná hora",
	},
	"it": {
		"italy", "italia", "rome", "roma", "milan", "milano", "naples", "napoli", "turin", "torino",
		"palermo", "genoa", "genova", "bologna", "florence", "firenze", "venice", "venezia",
		"verona", "trieste", "padova", "bolzano", "trento",
	},
	"es": {
		"spain", "españa", "madrid", "barcelona", "valencia", "sevilla", "seville", "zaragoza",
		"málaga", "murcia", "palma", "bilbao", "alicante", "córdoba", "valladolid",
		"granada", "oviedo", "pamplona", "toledo", "salamanca",
	},
}

// countryRegions 把常见国家名映射为 ISO 3166 地区码（属性中的 country 字段常写全名）。
var countryRegions = map[string]string{
	"germany": "DE", "deutschland": "DE",
	"austria": "AT", "österreich": "AT",
	"switzerland": "CH", "schweiz": "CH", "suisse": "CH", "svizzera": "CH",
	"france": "FR",
	"italy":  "IT", "italia": "IT",
	"spain": "ES", "españa": "ES",
	"portugal":    "PT",
	"netherlands": "NL", "nederland": "NL", "holland": "NL",
	"belgium": "BE", "belgië": "BE", "belgique": "BE",
	"luxembourg": "LU",
	"denmark":    "DK", "danmark": "DK",
	"sweden": "SE", "sverige": "SE",
	"norway": "NO", "norge": "NO",
	"finland": "FI", "suomi": "FI",
	"czech republic": "CZ", "czechia": "CZ", "česko": "CZ",
	"slovakia": "SK", "slovensko": "SK",
	"poland": "PL", "polska": "PL",
	"hungary": "HU", "magyarország": "HU",
	"slovenia": "SI", "slovenija": "SI",
	"croatia": "HR", "hrvatska": "HR",
	"greece":         "GR",
	"united kingdom": "GB", "england": "GB", "scotland": "GB", "wales": "GB",
	"ireland": "IE",
}

// wikiAliases 把 ISO 639 代码映射为 Wikipedia 子域名（两者不一致的少数情况）。
var wikiAliases = map[string]string{
	"nb": "no",
}

// diacriticHints 是只在少数语言中出现的字母，作为标题语言的弱提示。
var diacriticHints = map[rune]string{
	'ß': "de", 'ä': "de", 'ö': "de", 'ü': "de", 'Ä': "de", 'Ö': "de", 'Ü': "de",
	'å': "da", 'æ': "da", 'ø': "da", 'Å': "da", 'Æ': "da", 'Ø': "da",
	'ě': "cs", 'ř': "cs", 'ů': "cs", 'Ě': "cs", 'Ř': "cs", 'Ů': "cs",
	'ľ': "sk", 'ĺ': "sk", 'ŕ': "sk", 'ô': "sk", 'Ľ': "sk", 'Ĺ': "sk", 'Ŕ': "sk",
	'ą': "pl", 'ę': "pl", 'ł': "pl", 'ś': "pl", 'ź': "pl", 'ż': "pl", 'Ł': "pl", 'Ś': "pl", 'Ż': "pl",
	'ñ': "es", 'Ñ': "es",
	'ç': "fr", 'œ': "fr", 'ê': "fr", 'î': "fr", 'û': "fr", 'Ç': "fr",
	'ő': "hu", 'ű': "hu", 'Ő': "hu", 'Ű': "hu",
}
