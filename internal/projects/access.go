package projects

import (
	"errors"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/models"

	"gorm.io/gorm"
)

// assignedSubquery selects the ids of projects the given user is assigned to
// through their engineer profile.
func assignedSubquery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Table("project_engineers").
		Select("project_engineers.project_id").
		Joins("JOIN engineers ON engineers.id = project_engineers.engineer_id").
		Where("engineers.user_id = ?", userID)
}

// Scope restricts a projects query to what the user may see: the whole
// company for admins, assigned projects for site engineers.
func Scope(db *gorm.DB, user auth.UserCredential) *gorm.DB {
	q := db.Where("projects.company_id = ?", user.CompanyID)
	if !user.IsAdmin() {
		q = q.Where("projects.id IN (?)", assignedSubquery(db.Session(&gorm.Session{NewDB: true}), user.UserID))
	}
	return q
}

// Accessible loads a project of the user's company. Site engineers must also
// be assigned to it.
func Accessible(db *gorm.DB, user auth.UserCredential, projectID uint) (*models.Project, error) {
	var project models.Project
	err := db.Where("id = ? AND company_id = ?", projectID, user.CompanyID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return &project, nil
	}

	var count int64
	err = db.Table("project_engineers").
		Joins("JOIN engineers ON engineers.id = project_engineers.engineer_id").
		Where("project_engineers.project_id = ? AND engineers.user_id = ?", projectID, user.UserID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.Forbidden("You are not assigned to this project")
	}
	return &project, nil
}
