package sources

import "github.com/JonMunkholm/worldstats/internal/core"

func init() {
	registerCountryData()
}

func registerCountryData() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:       "country_data",
			Label:     "Country Indicators",
			File:      "country_data.csv",
			Order:     20,
			KeyColumn: "name",
			Columns: []string{
				"name",
				"gdp",
				"life_expectancy_male",
				"unemployment",
				"imports",
				"exports",
				"homicide_rate",
				"urban_population_growth",
				"secondary_school_enrollment_female",
				"forested_area",
				"post_secondary_enrollment_female",
				"post_secondary_enrollment_male",
				"primary_school_enrollment_female",
				"infant_mortality",
				"gdp_growth",
				"population",
				"secondary_school_enrollment_male",
				"pop_growth",
				"pop_density",
				"internet_users",
				"fertility",
				"refugees",
				"primary_school_enrollment_male",
				"co2_emissions",
				"tourists",
			},
		},
	})
}
