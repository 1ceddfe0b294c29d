package clients

import "testing"

func TestClientRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ClientRequest
		wantErr bool
	}{
		{"name only", ClientRequest{Name: "R. Mehta"}, false},
		{"with email", ClientRequest{Name: "R. Mehta", Email: "mehta@example.com"}, false},
		{"missing name", ClientRequest{Email: "mehta@example.com"}, true},
		{"bad email", ClientRequest{Name: "R. Mehta", Email: "not-an-email"}, true},
		{"gstin too long", ClientRequest{Name: "R. Mehta", GSTIN: "27ABCDE1234F1Z5XX"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContractRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ContractRequest
		wantErr bool
	}{
		{"minimal", ContractRequest{ClientID: 1, Title: "Fit-out"}, false},
		{"no client", ContractRequest{Title: "Fit-out"}, true},
		{"negative value", ContractRequest{ClientID: 1, Title: "Fit-out", Value: -10}, true},
		{"unknown status", ContractRequest{ClientID: 1, Title: "Fit-out", Status: "void"}, true},
		{"active", ContractRequest{ClientID: 1, Title: "Fit-out", Status: "active"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
