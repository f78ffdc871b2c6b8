// Package catalog holds the static vendor directory the agent procures from.
// In production this would be fed by real vendor discovery; the catalog is
// read-only for the life of the process.
package catalog

// Vendor is one procurable service offering.
type Vendor struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	ServiceType     string   `json:"serviceType"`
	PricePerMonth   float64  `json:"pricePerMonth"`
	SLA             float64  `json:"sla"`
	ReputationScore float64  `json:"reputationScore"`
	Features        []string `json:"features"`
	ContactEmail    string   `json:"contactEmail"`
}

var vendors = []Vendor{
	{
		ID:              "vendor_1",
		Name:            "ChainMetrics Pro",
		Description:     "Enterprise blockchain analytics and monitoring API",
		ServiceType:     "blockchain_analytics",
		PricePerMonth:   450,
		SLA:             99.9,
		ReputationScore: 9.2,
		Features: []string{
			"Real-time transaction monitoring",
			"Multi-chain support (50+ chains)",
			"Advanced wallet analysis",
			"Custom alerts and webhooks",
			"Historical data access (3 years)",
		},
		ContactEmail: "sales@chainmetrics.io",
	},
	{
		ID:              "vendor_2",
		Name:            "BlockInsight API",
		Description:     "Comprehensive blockchain data and intelligence platform",
		ServiceType:     "blockchain_analytics",
		PricePerMonth:   380,
		SLA:             99.5,
		ReputationScore: 8.8,
		Features: []string{
			"Transaction tracking",
			"Smart contract analysis",
			"DeFi protocol metrics",
			"NFT market data",
			"API rate limit: 10k req/min",
		},
		ContactEmail: "contact@blockinsight.com",
	},
	{
		ID:              "vendor_3",
		Name:            "CryptoData Hub",
		Description:     "Affordable blockchain analytics for startups",
		ServiceType:     "blockchain_analytics",
		PricePerMonth:   280,
		SLA:             98.5,
		ReputationScore: 7.5,
		Features: []string{
			"Basic transaction data",
			"5 supported chains",
			"Daily data updates",
			"Standard API access",
			"Email support",
		},
		ContactEmail: "support@cryptodatahub.com",
	},
	{
		ID:              "vendor_4",
		Name:            "OmniChain Analytics",
		Description:     "Premium multi-chain analytics with AI insights",
		ServiceType:     "blockchain_analytics",
		PricePerMonth:   650,
		SLA:             99.95,
		ReputationScore: 9.8,
		Features: []string{
			"AI-powered anomaly detection",
			"100+ blockchain networks",
			"Real-time streaming data",
			"Custom data pipelines",
			"24/7 priority support",
			"Dedicated account manager",
		},
		ContactEmail: "enterprise@omnichain.ai",
	},
	{
		ID:              "vendor_5",
		Name:            "DataChain Essentials",
		Description:     "Cost-effective blockchain data API for developers",
		ServiceType:     "blockchain_analytics",
		PricePerMonth:   199,
		SLA:             97.0,
		ReputationScore: 6.9,
		Features: []string{
			"Basic API endpoints",
			"3 major chains supported",
			"Rate limit: 1k req/min",
			"Community support",
			"Documentation portal",
		},
		ContactEmail: "hello@datachain.dev",
	},
}

// All returns every vendor in stable catalog order.
func All() []Vendor {
	out := make([]Vendor, len(vendors))
	copy(out, vendors)
	return out
}

// ByID looks up a vendor. Absence is not an error.
func ByID(id string) (Vendor, bool) {
	for _, v := range vendors {
		if v.ID == id {
			return v, true
		}
	}
	return Vendor{}, false
}

// ByPriceRange returns vendors priced within [min, max] per month.
func ByPriceRange(min, max float64) []Vendor {
	var out []Vendor
	for _, v := range vendors {
		if v.PricePerMonth >= min && v.PricePerMonth <= max {
			out = append(out, v)
		}
	}
	return out
}

// ByMinSLA returns vendors whose uptime guarantee is at least minSLA percent.
func ByMinSLA(minSLA float64) []Vendor {
	var out []Vendor
	for _, v := range vendors {
		if v.SLA >= minSLA {
			out = append(out, v)
		}
	}
	return out
}
