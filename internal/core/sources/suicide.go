package sources

import "github.com/JonMunkholm/worldstats/internal/core"

func init() {
	registerSuicideRates()
}

func registerSuicideRates() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:       "suicide_rates",
			Label:     "Suicide Rate by Country 2024",
			File:      "suicide_rate_by_country_2024.csv",
			Order:     40,
			KeyColumn: "country",
			Columns: []string{
				"country",
				"SuicideRate_BothSexes_RatePer100k_2021",
				"SuicideRate_Male_RatePer100k_2021",
				"SuicideRate_Female_RatePer100k_2021",
			},
		},
	})
}
