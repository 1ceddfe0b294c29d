package auth

import (
	"context"
	"testing"

	"interiors-erp/internal/models"
	"interiors-erp/internal/testhelpers"
)

func TestGormUserStatus(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	company := testhelpers.CreateTestCompany(t, db, "Acme Interiors")
	user := testhelpers.CreateTestUser(t, db, company.ID, "eng@acme.test", models.RoleSiteEngineer)
	status := NewUserStatus(db)
	ctx := context.Background()

	if ok, err := status.IsActive(ctx, user.ID); err != nil || !ok {
		t.Fatalf("IsActive(new user) = %v, %v, want true", ok, err)
	}

	if err := db.Model(&user).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if ok, err := status.IsActive(ctx, user.ID); err != nil || ok {
		t.Errorf("IsActive(deactivated) = %v, %v, want false", ok, err)
	}

	if ok, err := status.IsActive(ctx, user.ID+100); err != nil || ok {
		t.Errorf("IsActive(missing) = %v, %v, want false", ok, err)
	}
}
