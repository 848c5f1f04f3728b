package tracker

import (
	"reflect"
	"testing"

	"github.com/tripflowai/tripflow/internal/models"
)

func TestExtractSlots_BudgetAndGroupSize(t *testing.T) {
	var info models.CollectedInfo
	extractSlots(&info, "Bütçemiz 50000 TL ve ikimiz gideceğiz")

	if info.Budget != "50000 TL" {
		t.Errorf("expected budget %q, got %q", "50000 TL", info.Budget)
	}
	if info.GroupSize != 2 {
		t.Errorf("expected group size 2, got %d", info.GroupSize)
	}
}

func TestExtractSlots_Idempotent(t *testing.T) {
	var info models.CollectedInfo
	message := "Antalya ya da Bodrum olabilir, deniz ve spa istiyoruz, bütçe 30000 TL"
	extractSlots(&info, message)
	snapshot := info.Clone()

	extractSlots(&info, message)
	if !reflect.DeepEqual(info, snapshot) {
		t.Errorf("re-processing the same message changed collected info:\nbefore %+v\nafter  %+v", snapshot, info)
	}
	if len(info.Destinations) != 2 {
		t.Errorf("expected 2 destinations, got %v", info.Destinations)
	}
}

func TestExtractSlots_Destinations(t *testing.T) {
	var info models.CollectedInfo
	extractSlots(&info, "We are thinking about Paris or maybe Santorini")

	found := map[string]bool{}
	for _, d := range info.Destinations {
		found[d] = true
	}
	if !found["Paris"] || !found["Santorini"] {
		t.Errorf("expected Paris and Santorini, got %v", info.Destinations)
	}
}

func TestExtractSlots_TravelStyleAndTimeframe(t *testing.T) {
	var info models.CollectedInfo
	extractSlots(&info, "Balayı için gelecek hafta gitmek istiyoruz")

	if info.TravelStyle != "romantic" {
		t.Errorf("expected romantic style for honeymoon, got %q", info.TravelStyle)
	}
	if info.Timeframe == "" {
		t.Error("expected timeframe to be captured")
	}
}

func TestExtractSlots_NumericGroupSizeBeatsWords(t *testing.T) {
	var info models.CollectedInfo
	extractSlots(&info, "4 kişi gidiyoruz, çift değiliz")
	if info.GroupSize != 4 {
		t.Errorf("expected numeric group size 4, got %d", info.GroupSize)
	}
}

func TestExtractSlots_PreferencesAndConcerns(t *testing.T) {
	var info models.CollectedInfo
	extractSlots(&info, "Deniz kenarı otel olsun ama fiyat pahalı olmasın, vize gerekir mi?")

	prefs := map[string]bool{}
	for _, p := range info.Preferences {
		prefs[p] = true
	}
	if !prefs["beach"] || !prefs["hotel"] {
		t.Errorf("expected beach and hotel preferences, got %v", info.Preferences)
	}
	concerns := map[string]bool{}
	for _, c := range info.Concerns {
		concerns[c] = true
	}
	if !concerns["price"] || !concerns["visa"] {
		t.Errorf("expected price and visa concerns, got %v", info.Concerns)
	}
}

func TestCompletenessScore(t *testing.T) {
	var info models.CollectedInfo
	if got := info.CompletenessScore(); got != 0 {
		t.Errorf("empty info should score 0, got %f", got)
	}
	info.Destinations = []string{"Antalya"}
	info.Budget = "30000 TL"
	info.GroupSize = 2
	if got, want := info.CompletenessScore(), 0.5; got != want {
		t.Errorf("expected score %f, got %f", want, got)
	}
}
