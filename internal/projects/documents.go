package projects

import (
	"errors"
	"path/filepath"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findDocument(db *gorm.DB, user auth.UserCredential, id uint) (*models.ProjectDocument, error) {
	var doc models.ProjectDocument
	err := db.First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Document not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err := Accessible(db, user, doc.ProjectID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, err
	}
	return &doc, nil
}

// POST /api/projects/:id/documents (multipart field "file")
func UploadDocumentHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if _, err := Accessible(db, user, projectID); err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required")
		}
		rel, err := files.Save(c, fh, filepath.Join("documents", httpx.UintString(projectID)), storage.DocumentExtensions)
		if err != nil {
			return err
		}

		doc := models.ProjectDocument{
			ProjectID:    projectID,
			FileName:     filepath.Base(fh.Filename),
			StoredPath:   rel,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			UploadedByID: user.UserID,
		}
		if err := db.Create(&doc).Error; err != nil {
			_ = files.Remove(rel)
			return err
		}
		return httpx.Created(c, doc)
	}
}

// GET /api/projects/:id/documents
func ListDocumentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if _, err := Accessible(db, user, projectID); err != nil {
			return err
		}

		var docs []models.ProjectDocument
		if err := db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&docs).Error; err != nil {
			return err
		}
		return httpx.OK(c, docs)
	}
}

// GET /api/project-documents/:id/download
func DownloadDocumentHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		doc, err := findDocument(db, user, id)
		if err != nil {
			return err
		}

		full, err := files.Path(doc.StoredPath)
		if err != nil {
			return err
		}
		return c.Download(full, doc.FileName)
	}
}

// DELETE /api/project-documents/:id
func DeleteDocumentHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		doc, err := findDocument(db, user, id)
		if err != nil {
			return err
		}

		if err := db.Delete(doc).Error; err != nil {
			return err
		}
		_ = files.Remove(doc.StoredPath)
		return httpx.OK(c, nil)
	}
}
