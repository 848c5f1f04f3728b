package tracker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
)

// budgetPattern matches an amount followed by a currency marker, e.g.
// "50000 TL", "1.500 €", "2000 usd".
var budgetPattern = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(tl|try|usd|eur|lira|dolar|dollars?|euros?|₺|\$|€)`)

// groupSizePattern matches an explicit head count, e.g. "4 kişi", "2 people".
var groupSizePattern = regexp.MustCompile(`(?i)(\d+)\s*(kişi|kişilik|people|persons?|adults?|pax)`)

// timeframePattern matches relative durations, e.g. "3 gün", "2 weeks".
var timeframePattern = regexp.MustCompile(`(?i)(\d+)\s*(gün|gece|hafta|ay|days?|nights?|weeks?|months?)`)

// groupSizeWords maps spelled-out group references to a head count.
var groupSizeWords = map[string]int{
	"tek başıma": 1,
	"yalnız":     1,
	"alone":      1,
	"solo":       1,
	"ikimiz":     2,
	"çift":       2,
	"couple":     2,
	"eşimle":     2,
	"üçümüz":     3,
	"dördümüz":   4,
}

// destinationKeywords maps lower-cased substrings to canonical destination
// names. Contains matching keeps Turkish suffixed forms ("Paris'e") working.
var destinationKeywords = map[string]string{
	"paris":      "Paris",
	"roma":       "Rome",
	"rome":       "Rome",
	"antalya":    "Antalya",
	"bodrum":     "Bodrum",
	"kapadokya":  "Cappadocia",
	"cappadocia": "Cappadocia",
	"bali":       "Bali",
	"maldiv":     "Maldives",
	"italya":     "Italy",
	"italy":      "Italy",
	"yunanistan": "Greece",
	"greece":     "Greece",
	"santorini":  "Santorini",
	"dubai":      "Dubai",
	"prag":       "Prague",
	"amsterdam":  "Amsterdam",
	"barselona":  "Barcelona",
	"barcelona":  "Barcelona",
	"stanbul":    "Istanbul",
	"tokyo":      "Tokyo",
	"londra":     "London",
	"london":     "London",
}

// travelStyleKeywords maps style markers to a canonical travel style.
var travelStyleKeywords = map[string]string{
	"lüks":      "luxury",
	"luxury":    "luxury",
	"ekonomik":  "budget",
	"ucuz":      "budget",
	"cheap":     "budget",
	"macera":    "adventure",
	"adventure": "adventure",
	"romantik":  "romantic",
	"romantic":  "romantic",
	"balayı":    "romantic",
	"honeymoon": "romantic",
	"kültür":    "cultural",
	"culture":   "cultural",
	"cultural":  "cultural",
	"dinlen":    "relaxation",
	"huzurlu":   "relaxation",
	"relax":     "relaxation",
	"ailece":    "family",
	"aile":      "family",
	"family":    "family",
}

// timeframeKeywords are standalone timeframe phrases captured verbatim.
var timeframeKeywords = []string{
	"yarın", "tomorrow",
	"bu hafta sonu", "hafta sonu", "weekend",
	"gelecek hafta", "next week",
	"gelecek ay", "next month",
	"bu yaz", "yazın", "summer",
	"kışın", "winter",
	"ocak", "şubat", "mart", "nisan", "mayıs", "haziran",
	"temmuz", "ağustos", "eylül", "ekim", "kasım", "aralık",
	"january", "february", "march", "april", "june",
	"july", "august", "september", "october", "november", "december",
}

// preferenceKeywords maps preference markers to canonical preference tags.
var preferenceKeywords = map[string]string{
	"deniz":       "beach",
	"plaj":        "beach",
	"beach":       "beach",
	"otel":        "hotel",
	"hotel":       "hotel",
	"doğa":        "nature",
	"nature":      "nature",
	"müze":        "museums",
	"museum":      "museums",
	"yemek":       "food",
	"gastronomi":  "food",
	"food":        "food",
	"alışveriş":   "shopping",
	"shopping":    "shopping",
	"gece hayatı": "nightlife",
	"nightlife":   "nightlife",
	"spa":         "spa",
}

// concernKeywords maps concern markers to canonical concern tags.
var concernKeywords = map[string]string{
	"pahalı":    "price",
	"expensive": "price",
	"fiyat":     "price",
	"güvenli":   "safety",
	"güvenlik":  "safety",
	"safe":      "safety",
	"safety":    "safety",
	"vize":      "visa",
	"visa":      "visa",
	"sağlık":    "health",
	"health":    "health",
	"iptal":     "cancellation",
	"cancel":    "cancellation",
	"sigorta":   "insurance",
	"insurance": "insurance",
}

// extractSlots populates collected info from a single message. Extraction is
// purely additive and idempotent: set-valued slots deduplicate, scalar slots
// take the latest detected value, and re-processing the same message changes
// nothing.
func extractSlots(info *models.CollectedInfo, message string) {
	lowered := strings.ToLower(message)

	for keyword, canonical := range destinationKeywords {
		if strings.Contains(lowered, keyword) {
			info.Destinations = addUnique(info.Destinations, canonical)
		}
	}

	if m := budgetPattern.FindString(message); m != "" {
		info.Budget = strings.TrimSpace(m)
	}

	for keyword, style := range travelStyleKeywords {
		if strings.Contains(lowered, keyword) {
			info.TravelStyle = style
			break
		}
	}

	if size := extractGroupSize(lowered); size > 0 {
		info.GroupSize = size
	}

	if tf := extractTimeframe(lowered); tf != "" {
		info.Timeframe = tf
	}

	for keyword, pref := range preferenceKeywords {
		if strings.Contains(lowered, keyword) {
			info.Preferences = addUnique(info.Preferences, pref)
		}
	}

	for keyword, concern := range concernKeywords {
		if strings.Contains(lowered, keyword) {
			info.Concerns = addUnique(info.Concerns, concern)
		}
	}
}

// extractGroupSize finds an explicit head count, preferring numeric forms
// over spelled-out ones.
func extractGroupSize(lowered string) int {
	if m := groupSizePattern.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 100 {
			return n
		}
	}
	for word, size := range groupSizeWords {
		if strings.Contains(lowered, word) {
			return size
		}
	}
	return 0
}

// extractTimeframe captures either a relative duration ("3 gün") or a known
// timeframe phrase ("gelecek hafta").
func extractTimeframe(lowered string) string {
	if m := timeframePattern.FindString(lowered); m != "" {
		return strings.TrimSpace(m)
	}
	for _, keyword := range timeframeKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword
		}
	}
	return ""
}

// addUnique appends value if absent, preserving insertion order.
func addUnique(set []string, value string) []string {
	for _, existing := range set {
		if existing == value {
			return set
		}
	}
	return append(set, value)
}
