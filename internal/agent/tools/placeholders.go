// Package tools holds the string-in, string-out functions the specialist
// agents expose to their models.
package tools

import (
	"context"
	"fmt"
	"strings"
)

// Tool names as the models see them.
const (
	NameQSARRisk         = "QSAR Risk Assessment"
	NameClinicalTrials   = "Clinical Trials Search"
	NamePubMed           = "PubMed Search"
	NameMarketForecast   = "Market Forecasting"
	NameCompetitiveNews  = "Competitive News Search"
	NamePatientSentiment = "Sentiment Analysis"
)

// QSARRisk reports the toxicity screen for a drug. The underlying model is
// not served yet, so the assessment is fixed.
func QSARRisk(_ context.Context, drug string) (string, error) {
	return fmt.Sprintf("QSAR Model Assessment for %s: Low-to-Moderate Toxicity Risk. Primary concern: Liver Metabolism (Flagged).", drug), nil
}

// PubMedSearch summarises the literature hit count for query.
func PubMedSearch(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("PubMed Literature Search for '%s': Found 12 high-impact abstracts related to off-target safety signals.", query), nil
}

// MarketForecast returns market size and CAGR for a therapeutic area.
func MarketForecast(_ context.Context, area string) (string, error) {
	if strings.Contains(strings.ToLower(area), "alzheimer") {
		return fmt.Sprintf("Market Data for %s: Size: $15 Billion. Forecasted CAGR: 5.2%% (Moderate).", area), nil
	}
	return fmt.Sprintf("Market Data for %s: Size: $2.5 Billion. Forecasted CAGR: 8.5%% (High).", area), nil
}

// PatientSentiment returns real-world review sentiment for a drug.
func PatientSentiment(_ context.Context, drug string) (string, error) {
	return fmt.Sprintf("Real-World Patient Sentiment for %s: Score: 8.2/10. Top Concern: Nausea (Flagged in 15%% of reviews).", drug), nil
}
