package discovery

// SeedPostalCodes is the curated crawl starting set: one or more codes
// per population center, weighted toward provinces where warehouse
// boundaries are known to be dense.
var SeedPostalCodes = []string{
	// Alicante
	"03000", "03189", "03201", "03400", "03460", "03500", "03710", "03801",
	// Barcelona metro
	"08000", "08110", "08120", "08170", "08301", "08320", "08401", "08620",
	"08630", "08640", "08690", "08800", "08820", "08840", "08860", "08901",
	"08940", "08950", "08960", "08970", "08980",
	// Ciudad Real
	"13000", "13300", "13500", "13600",
	// Granada
	"18000", "18140", "18314", "18412", "18690", "18697",
	// Lleida
	"25000", "25220", "25250",
	// Madrid metro
	"28000", "28100", "28120", "28220", "28230", "28300", "28320", "28400",
	"28500", "28600", "28660", "28690", "28760", "28800", "28820", "28850",
	"28900", "28910", "28920", "28930", "28940", "28980",
	// Málaga coast
	"29000", "29120", "29130", "29170", "29180", "29400", "29600", "29610",
	"29620", "29630", "29640", "29650", "29660", "29670", "29680", "29690",
	"29700", "29710", "29730", "29740", "29750", "29770", "29780", "29791",
	// Murcia
	"30000", "30201", "30510", "30550", "30800", "30840",
	// Canary Islands
	"35000", "35011", "35017", "35500", "35510", "35530", "35550", "35560",
	"35570", "35600", "35628", "35630", "35640", "38000",
	// Salamanca
	"37000", "37789",
	// Valencia
	"46000", "46100", "46200", "46300", "46400", "46500", "46600", "46700",
	"46800", "46900", "46920", "46980",
	// Bizkaia
	"48000", "48100", "48110", "48130", "48140", "48150", "48160", "48170",
	"48180", "48190", "48200", "48210", "48220", "48230", "48240", "48260",
	"48270", "48280", "48300", "48310", "48320", "48340", "48370", "48380",
	"48390", "48410", "48450", "48480", "48500", "48510", "48550", "48600",
	"48610", "48620", "48640", "48700", "48800", "48820", "48850", "48880",
	"48901", "48910", "48920", "48930", "48940", "48950", "48960", "48970",
	"48980", "48991",
	// Ceuta and Melilla
	"51000", "52000",
	// Álava
	"01176",
}
