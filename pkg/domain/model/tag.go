package model

// Tag links an observation to an indicator with a severity rating.
// Tags are owned by the notes module; this service only reads them.
type Tag struct {
	IndicatorID string `json:"indicatorId"`
	Severity    int    `json:"severity"`
	Comment     string `json:"comment,omitempty" masq:"secret"`
}
