package tools

import (
	"github.com/medhub/medhub/internal/agent"
)

// TrialsTools is the clinical-trials specialist's tool set.
func TrialsTools(registry *ClinicalTrials) []agent.Tool {
	return []agent.Tool{
		{
			Name:        NameQSARRisk,
			Description: "Use this tool first to assess the toxicity risk of a drug.",
			Func:        QSARRisk,
		},
		{
			Name:        NameClinicalTrials,
			Description: "Use this tool to find active clinical trials, their phases, and IDs from ClinicalTrials.gov.",
			Func:        registry.Search,
		},
		{
			Name:        NamePubMed,
			Description: "Use this tool to search for medical literature and safety signals.",
			Func:        PubMedSearch,
		},
	}
}

// MarketTools is the market-analysis specialist's tool set.
func MarketTools(search *WebSearch) []agent.Tool {
	return []agent.Tool{
		{
			Name:        NameMarketForecast,
			Description: "Get market size and CAGR forecasts.",
			Func:        MarketForecast,
		},
		{
			Name:        NameCompetitiveNews,
			Description: "Search web for competitor news.",
			Func:        search.Search,
		},
		{
			Name:        NamePatientSentiment,
			Description: "Get patient sentiment scores.",
			Func:        PatientSentiment,
		},
	}
}
