package crypto

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		criteria   Criteria
		wantValid  bool
		wantIssues int
	}{
		{
			name:      "meets default criteria",
			password:  "Tr0ub4dor&3x",
			criteria:  DefaultCriteria(),
			wantValid: true,
		},
		{
			name:       "missing everything but lowercase",
			password:   "abc",
			criteria:   DefaultCriteria(),
			wantIssues: 4,
		},
		{
			name:      "relaxed criteria",
			password:  "abcdef",
			criteria:  Criteria{MinLength: 6, RequireLowercase: true},
			wantValid: true,
		},
		{
			name:       "missing special character",
			password:   "Abcdefg1",
			criteria:   DefaultCriteria(),
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.password, tt.criteria)
			if got.IsValid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v (issues %v)", got.IsValid, tt.wantValid, got.Issues)
			}
			if len(got.Issues) != tt.wantIssues {
				t.Errorf("Validate() issues = %v, want %d", got.Issues, tt.wantIssues)
			}
			if got.Strength.Score != ScoreStandalone(tt.password).Score {
				t.Errorf("Validate() strength = %d, want standalone score", got.Strength.Score)
			}
		})
	}
}

func TestEstimateStrength(t *testing.T) {
	weak := EstimateStrength("password")
	strong := EstimateStrength("q7#Vr!2mZ@x9Lp$w")

	if weak.Score >= strong.Score {
		t.Errorf("EstimateStrength() weak score %d should be below strong score %d", weak.Score, strong.Score)
	}
	if strong.Entropy <= weak.Entropy {
		t.Errorf("EstimateStrength() strong entropy %.1f should exceed weak entropy %.1f", strong.Entropy, weak.Entropy)
	}
	if strong.CrackTime == "" {
		t.Error("EstimateStrength() returned empty crack time")
	}
}
