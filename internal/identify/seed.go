package identify

// seedEntry maps a known scan code to a searchable title. The table is a
// bootstrap fallback for demo discs whose codes TMDB cannot resolve directly;
// it is not a UPC database.
type seedEntry struct {
	Title string
	Year  int
}

var seedTitles = map[string]seedEntry{
	"024543273738": {Title: "Avatar", Year: 2009},
	"191329060858": {Title: "Star Wars: The Last Jedi", Year: 2017},
	"191329001769": {Title: "Avengers: Infinity War", Year: 2018},
}

func lookupSeed(code string) (seedEntry, bool) {
	entry, ok := seedTitles[code]
	return entry, ok
}
