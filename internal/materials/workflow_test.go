package materials

import (
	"regexp"
	"testing"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/models"
)

func TestCanReview(t *testing.T) {
	tests := []struct {
		status models.RequestStatus
		want   bool
	}{
		{models.RequestPending, true},
		{models.RequestApproved, false},
		{models.RequestRejected, false},
	}
	for _, tt := range tests {
		if got := CanReview(tt.status); got != tt.want {
			t.Errorf("CanReview(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidateRejection(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		err := ValidateRejection(reason)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("ValidateRejection(%q) = %v, want validation error", reason, err)
		}
	}
	if err := ValidateRejection("Over budget"); err != nil {
		t.Errorf("ValidateRejection() = %v, want nil", err)
	}
}

func ptrUint(v uint) *uint { return &v }
func ptrFloat(v float64) *float64 { return &v }

func TestCreateRequestInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateRequestInput
		wantErr bool
	}{
		{
			name: "global with name and unit",
			in:   CreateRequestInput{Type: models.RequestGlobal, Name: "Plywood 18mm", Unit: "sheet"},
		},
		{
			name:    "global without unit",
			in:      CreateRequestInput{Type: models.RequestGlobal, Name: "Plywood 18mm"},
			wantErr: true,
		},
		{
			name: "project with quantity",
			in: CreateRequestInput{Type: models.RequestProject, Name: "Laminate", Unit: "sheet",
				ProjectID: ptrUint(1), Quantity: ptrFloat(20)},
		},
		{
			name:    "project without project id",
			in:      CreateRequestInput{Type: models.RequestProject, Name: "Laminate", Unit: "sheet", Quantity: ptrFloat(20)},
			wantErr: true,
		},
		{
			name: "project with zero quantity",
			in: CreateRequestInput{Type: models.RequestProject, Name: "Laminate", Unit: "sheet",
				ProjectID: ptrUint(1), Quantity: ptrFloat(0)},
			wantErr: true,
		},
		{
			name: "project material needs no name",
			in: CreateRequestInput{Type: models.RequestProjectMaterial,
				ProjectID: ptrUint(1), MaterialID: ptrUint(4), Quantity: ptrFloat(2.5)},
		},
		{
			name:    "project material without material",
			in:      CreateRequestInput{Type: models.RequestProjectMaterial, ProjectID: ptrUint(1), Quantity: ptrFloat(2.5)},
			wantErr: true,
		},
		{
			name:    "unknown type",
			in:      CreateRequestInput{Type: "BULK", Name: "x", Unit: "kg"},
			wantErr: true,
		},
		{
			name:    "negative rate",
			in:      CreateRequestInput{Type: models.RequestGlobal, Name: "x", Unit: "kg", DefaultRate: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMaterialCode(t *testing.T) {
	re := regexp.MustCompile(`^MAT-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := NewMaterialCode()
		if !re.MatchString(code) {
			t.Fatalf("NewMaterialCode() = %q, want MAT-XXXXXXXX", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
