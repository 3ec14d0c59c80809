package types_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
)

func TestTenantID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.TenantID
		wantErr bool
	}{
		{"valid lowercase", "jugendamt-nord", false},
		{"valid with numbers", "tenant-42", false},
		{"empty", "", true},
		{"uppercase", "Jugendamt", true},
		{"underscore", "jugendamt_nord", true},
		{"trailing hyphen", "nord-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("TenantID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCaseID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.CaseID
		wantErr bool
	}{
		{"numeric", "4711", false},
		{"mixed", "KS-2026-0042", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
		{"dot dot", "..", true},
		{"too long", types.CaseID(strings.Repeat("x", 129)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("CaseID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigID(t *testing.T) {
	id := types.NewConfigID()
	gt.NoError(t, id.Validate())
	gt.Value(t, id).NotEqual(types.NewConfigID())
	gt.Error(t, types.ConfigID("not-a-uuid").Validate())
}

func TestClampSeverity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-4, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{5, 3},
	}

	for _, tt := range tests {
		gt.Value(t, types.ClampSeverity(tt.in)).Equal(tt.want)
	}
}

func TestIsThresholdSeverity(t *testing.T) {
	gt.Bool(t, types.IsThresholdSeverity(0)).False()
	gt.Bool(t, types.IsThresholdSeverity(1)).True()
	gt.Bool(t, types.IsThresholdSeverity(3)).True()
	gt.Bool(t, types.IsThresholdSeverity(4)).False()
}

func TestTrafficLight(t *testing.T) {
	for _, l := range types.AllTrafficLights() {
		gt.Bool(t, l.IsValid()).True()
		parsed, err := types.ParseTrafficLight(l.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(l)
	}

	gt.Bool(t, types.TrafficLightRed.Rank() > types.TrafficLightYellow.Rank()).True()
	gt.Bool(t, types.TrafficLightYellow.Rank() > types.TrafficLightGreen.Rank()).True()

	_, err := types.ParseTrafficLight("AMBER")
	gt.Error(t, err)
}
