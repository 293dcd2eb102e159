package models

import (
	"testing"
	"time"
)

func TestRequestNormalizeDefaults(t *testing.T) {
	r := AssessmentRequest{Crop: "tomato", TemperatureC: 22, HumidityPct: 65, Location: "Mumbai"}
	r.Normalize()

	if r.QuantityKG != DefaultQuantityKG {
		t.Errorf("quantity default = %.1f, want %.1f", r.QuantityKG, DefaultQuantityKG)
	}
	if r.Urgency != UrgencyMedium {
		t.Errorf("urgency default = %q, want MEDIUM", r.Urgency)
	}
	if r.AgeHours != 0 {
		t.Errorf("age default = %.1f, want 0", r.AgeHours)
	}
}

func TestRequestValidate(t *testing.T) {
	valid := AssessmentRequest{
		Crop: "tomato", TemperatureC: 22, HumidityPct: 65,
		QuantityKG: 10, Location: "Mumbai", Urgency: UrgencyMedium,
	}

	tests := []struct {
		name    string
		mutate  func(*AssessmentRequest)
		wantErr bool
	}{
		{"valid", func(r *AssessmentRequest) {}, false},
		{"temp at lower bound", func(r *AssessmentRequest) { r.TemperatureC = -10 }, false},
		{"temp at upper bound", func(r *AssessmentRequest) { r.TemperatureC = 60 }, false},
		{"temp below range", func(r *AssessmentRequest) { r.TemperatureC = -10.5 }, true},
		{"temp above range", func(r *AssessmentRequest) { r.TemperatureC = 61 }, true},
		{"humidity below range", func(r *AssessmentRequest) { r.HumidityPct = -1 }, true},
		{"humidity above range", func(r *AssessmentRequest) { r.HumidityPct = 101 }, true},
		{"negative age", func(r *AssessmentRequest) { r.AgeHours = -1 }, true},
		{"zero quantity", func(r *AssessmentRequest) { r.QuantityKG = 0 }, true},
		{"missing crop", func(r *AssessmentRequest) { r.Crop = "" }, true},
		{"missing location", func(r *AssessmentRequest) { r.Location = "" }, true},
		{"bad urgency", func(r *AssessmentRequest) { r.Urgency = "ASAP" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	if !(SeverityRank(SeverityCritical) > SeverityRank(SeverityHigh) &&
		SeverityRank(SeverityHigh) > SeverityRank(SeverityMedium) &&
		SeverityRank(SeverityMedium) > SeverityRank(SeverityLow)) {
		t.Error("severity ranks are not strictly ordered")
	}
}

func TestWorkflowRunLifecycle(t *testing.T) {
	run := NewWorkflowRun("run-1", time.Now())

	if run.Status != RunPending {
		t.Errorf("new run status = %q, want PENDING", run.Status)
	}
	if len(run.Stages) != 4 {
		t.Fatalf("new run has %d stages, want 4", len(run.Stages))
	}
	for name, rec := range run.Stages {
		if rec.State != StagePending {
			t.Errorf("stage %s state = %q, want PENDING", name, rec.State)
		}
	}

	if RunRunning.Terminal() {
		t.Error("RUNNING should not be terminal")
	}
	for _, s := range []RunStatus{RunCompleted, RunDegraded, RunFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestDegradedStages(t *testing.T) {
	run := NewWorkflowRun("run-2", time.Now())
	run.Stages[StageFreshness].State = StageSucceeded
	run.Stages[StageMarket].State = StageFellBack
	run.Stages[StageLogistics].State = StageSucceeded
	run.Stages[StageWeather].State = StageDefaulted

	got := run.DegradedStages()
	if len(got) != 2 || got[0] != StageMarket || got[1] != StageWeather {
		t.Errorf("DegradedStages() = %v, want [market weather]", got)
	}
}

func TestProfileBands(t *testing.T) {
	p := CropProfile{TempMinC: 15, TempMaxC: 25, HumidityMinPct: 60, HumidityMaxPct: 80}

	if !p.InTempBand(15) || !p.InTempBand(25) || !p.InTempBand(22) {
		t.Error("band edges and interior should be in temp band")
	}
	if p.InTempBand(14.9) || p.InTempBand(25.1) {
		t.Error("readings outside the band should not match")
	}
	if !p.InHumidityBand(65) || p.InHumidityBand(81) {
		t.Error("humidity band check failed")
	}
}
