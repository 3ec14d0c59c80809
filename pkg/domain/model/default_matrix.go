package model

// DefaultMatrixVersion is recorded on snapshots computed without an active tenant configuration
const DefaultMatrixVersion = "builtin-default"

// Dimensions of the built-in catalog
const (
	DimensionPhysical      = "körperlich"
	DimensionSexual        = "sexuell"
	DimensionPsychological = "psychisch"
	DimensionNeglect       = "vernachlässigung"
	DimensionEnvironment   = "umfeld"
)

// LabelInjurySevere is the hard rule label of the injury_severe indicator
const LabelInjurySevere = "Schwere Verletzung – sofortige Schutzmaßnahme prüfen"

// DefaultRiskMatrix returns the built-in configuration used when a tenant has no active one.
// A fresh value is returned on every call.
func DefaultRiskMatrix() *RiskMatrix {
	return &RiskMatrix{
		GreenMax:  5,
		YellowMax: 12,
		DimensionMultiplier: map[string]float64{
			DimensionPhysical:      1.2,
			DimensionSexual:        1.3,
			DimensionPsychological: 1.0,
			DimensionNeglect:       1.1,
			DimensionEnvironment:   0.9,
		},
		MultiDimensionMinForRed:      3,
		VolumeMinIndicatorsForYellow: 4,
		ProtectiveCapMaxReduction:    4,
		Indicators: []Indicator{
			{
				ID:                "injury_severe",
				Title:             "Schwere Verletzung (z. B. Fraktur, Verbrennung)",
				Dimension:         DimensionPhysical,
				Weight:            8,
				PresentAtSeverity: 1,
				HardRule:          &HardRule{AtOrAbove: 2, Label: LabelInjurySevere},
			},
			{
				ID:                "injury_unexplained",
				Title:             "Unerklärte oder wiederholte Verletzungen",
				Dimension:         DimensionPhysical,
				Weight:            4,
				PresentAtSeverity: 1,
			},
			{
				ID:                "sexual_abuse_indication",
				Title:             "Hinweise auf sexuelle Gewalt",
				Dimension:         DimensionSexual,
				Weight:            8,
				PresentAtSeverity: 1,
				HardRule:          &HardRule{AtOrAbove: 2, Label: "Konkrete Hinweise auf sexuelle Gewalt"},
			},
			{
				ID:                "neglect_basic_needs",
				Title:             "Vernachlässigung der Grundversorgung (Ernährung, Hygiene, Kleidung)",
				Dimension:         DimensionNeglect,
				Weight:            5,
				PresentAtSeverity: 2,
			},
			{
				ID:                "neglect_supervision",
				Title:             "Unzureichende Aufsicht",
				Dimension:         DimensionNeglect,
				Weight:            3,
				PresentAtSeverity: 2,
			},
			{
				ID:                "neglect_medical",
				Title:             "Fehlende medizinische Versorgung",
				Dimension:         DimensionNeglect,
				Weight:            4,
				PresentAtSeverity: 2,
			},
			{
				ID:                "emotional_abuse",
				Title:             "Herabsetzung, Drohung oder Demütigung",
				Dimension:         DimensionPsychological,
				Weight:            3,
				PresentAtSeverity: 2,
			},
			{
				ID:                "domestic_violence",
				Title:             "Häusliche Gewalt im Umfeld des Kindes",
				Dimension:         DimensionPsychological,
				Weight:            5,
				PresentAtSeverity: 1,
			},
			{
				ID:                "child_fear_of_return",
				Title:             "Kind äußert Angst vor Rückkehr",
				Dimension:         DimensionPsychological,
				Weight:            6,
				PresentAtSeverity: 1,
				HardRule:          &HardRule{AtOrAbove: 3, Label: "Kind äußert massive Angst vor Rückkehr"},
			},
			{
				ID:                "caregiver_substance_abuse",
				Title:             "Suchtmittelkonsum einer Bezugsperson",
				Dimension:         DimensionEnvironment,
				Weight:            4,
				PresentAtSeverity: 2,
			},
			{
				ID:                "caregiver_mental_illness",
				Title:             "Unbehandelte psychische Erkrankung einer Bezugsperson",
				Dimension:         DimensionEnvironment,
				Weight:            3,
				PresentAtSeverity: 2,
			},
			{
				ID:                "cooperation_refused",
				Title:             "Sorgeberechtigte verweigern Mitwirkung",
				Dimension:         DimensionEnvironment,
				Weight:            2,
				PresentAtSeverity: 2,
			},
		},
		Meta: MatrixMeta{SupportOnly: true},
	}
}
