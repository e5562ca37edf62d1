package normalize

// countries holds folded country names and ISO codes that may trail a location
var countries = set(
	"germany", "deutschland", "de", "deu",
	"austria", "österreich", "osterreich", "at", "aut",
	"switzerland", "schweiz", "suisse", "ch", "che",
	"france", "fr", "fra",
	"netherlands", "the netherlands", "nederland", "nl", "nld",
	"belgium", "belgië", "belgique", "be", "bel",
	"luxembourg", "lu", "lux",
	"denmark", "dk", "dnk",
	"sweden", "se", "swe",
	"norway", "no", "nor",
	"finland", "fi", "fin",
	"poland", "polska", "pl", "pol",
	"czech republic", "czechia", "cz", "cze",
	"spain", "españa", "es", "esp",
	"portugal", "pt", "prt",
	"italy", "italia", "it", "ita",
	"ireland", "ie", "irl",
	"united kingdom", "uk", "gb", "gbr", "great britain", "england",
	"united states", "united states of america", "usa", "us",
	"canada", "ca", "can",
	"australia", "au", "aus",
	"india", "in", "ind",
)

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
