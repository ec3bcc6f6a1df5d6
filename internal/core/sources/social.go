package sources

import "github.com/JonMunkholm/worldstats/internal/core"

func init() {
	registerSocialProgress()
}

func registerSocialProgress() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:       "social_progress",
			Label:     "Social Progress Index 2022",
			File:      "Social_Progress_Index_2022.csv",
			Order:     30,
			KeyColumn: "Country",
			Columns: []string{
				"Country",
				"Social Progress Score",
				"Basic Human Needs",
				"Foundations of Wellbeing",
				"Opportunity",
				"Nutrition and Basic Medical Care",
				"Water and Sanitation",
				"Shelter",
				"Personal Safety",
				"Access to Basic Knowledge",
				"Access to Information and Communications",
				"Health and Wellness",
				"Environmental Quality",
				"Personal Rights",
				"Personal Freedom and Choice",
				"Inclusiveness",
				"Access to Advanced Education",
			},
		},
	})
}
