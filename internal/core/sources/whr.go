package sources

import "github.com/JonMunkholm/worldstats/internal/core"

func init() {
	registerWorldHappiness()
}

func registerWorldHappiness() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:       "whr",
			Label:     "World Happiness Report 2024",
			File:      "WHR2024.csv",
			Order:     10,
			KeyColumn: "Country name",
			Columns: []string{
				"Country name",
				"Ladder score",
				"Explained by: Log GDP per capita",
				"Explained by: Social support",
				"Explained by: Healthy life expectancy",
				"Explained by: Freedom to make life choices",
				"Explained by: Generosity",
				"Explained by: Perceptions of corruption",
			},
		},
	})
}
