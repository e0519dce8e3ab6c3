package apple

import (
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// accumulator folds category streams into one in-progress record per date.
// Categories own disjoint field sets, so the order in which categories are
// applied cannot change the result; within one category, the later entry
// in array order wins for its date.
type accumulator struct {
	userID  string
	source  string
	records map[string]*models.DailyMetricRecord
}

func newAccumulator(userID, source string) *accumulator {
	return &accumulator{
		userID:  userID,
		source:  source,
		records: make(map[string]*models.DailyMetricRecord),
	}
}

// record returns the in-progress record for a date, creating it on first use.
func (a *accumulator) record(date string) *models.DailyMetricRecord {
	if r, ok := a.records[date]; ok {
		return r
	}
	r := &models.DailyMetricRecord{UserID: a.userID, Date: date, Source: a.source}
	a.records[date] = r
	return r
}

func (a *accumulator) applyActivity(obs []activityObs) {
	for _, o := range obs {
		r := a.record(o.date)
		r.Steps = o.steps
		r.ActiveMinutes = o.activeMinutes
		r.CaloriesBurned = o.caloriesBurned
	}
}

func (a *accumulator) applySleep(obs []sleepObs) {
	for _, o := range obs {
		r := a.record(o.date)
		r.SleepDuration = o.total
		r.DeepSleepDuration = o.deep
		r.LightSleepDuration = o.light
	}
}

func (a *accumulator) applyBodyMass(obs []bodyMassObs) {
	for _, o := range obs {
		a.record(o.date).Weight = o.weight
	}
}

func (a *accumulator) applyHeartRate(obs []heartRateObs) {
	for _, o := range obs {
		a.record(o.date).RestingHeartRate = o.resting
	}
}

func (a *accumulator) applyNutrition(obs []nutritionObs) {
	for _, o := range obs {
		r := a.record(o.date)
		r.Protein = o.protein
		r.Carbs = o.carbs
		r.Fats = o.fats
	}
}

func (a *accumulator) results() []models.DailyMetricRecord {
	out := make([]models.DailyMetricRecord, 0, len(a.records))
	for _, r := range a.records {
		out = append(out, *r)
	}
	return out
}

// Reduce merges a validated batch into one DailyMetricRecord per calendar
// date. It is pure and has no error paths; all failure surfaces live in
// validation before it and in persistence after it. Output order is not a
// contract.
func Reduce(userID, source string, b *Batch) []models.DailyMetricRecord {
	acc := newAccumulator(userID, source)
	acc.applyActivity(b.Activity)
	acc.applySleep(b.Sleep)
	acc.applyBodyMass(b.BodyMass)
	acc.applyHeartRate(b.HeartRate)
	acc.applyNutrition(b.Nutrition)
	return acc.results()
}
