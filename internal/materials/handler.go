package materials

import (
	"time"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
)

type CreateUsageRequest struct {
	ProjectID  uint    `json:"projectId"`
	MaterialID uint    `json:"materialId"`
	Quantity   float64 `json:"quantity"`
	Remarks    string  `json:"remarks"`
	Date       string  `json:"date"`
}

func (r CreateUsageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.MaterialID, validation.Required),
		validation.Field(&r.Remarks, validation.Length(0, 255)),
	)
}

type EditUsageRequest struct {
	Quantity float64 `json:"quantity"`
	Remarks  string  `json:"remarks"`
	Date     string  `json:"date"`
}

type AllocateRequest struct {
	ProjectID  uint    `json:"projectId"`
	MaterialID uint    `json:"materialId"`
	Quantity   float64 `json:"quantity"`
}

func (r AllocateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.MaterialID, validation.Required),
	)
}

func usageResponse(c *fiber.Ctx, status int, res *UsageResult) error {
	body := fiber.Map{"success": true, "data": res}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	return c.Status(status).JSON(body)
}

// POST /api/usage-logs
func CreateUsageLogHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateUsageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.Date, time.Now())
		if err != nil {
			return err
		}

		res, err := svc.Create(c.UserContext(), user, UsageInput{
			ProjectID:  body.ProjectID,
			MaterialID: body.MaterialID,
			Quantity:   body.Quantity,
			Remarks:    body.Remarks,
			Date:       date,
		})
		if err != nil {
			return err
		}
		return usageResponse(c, fiber.StatusCreated, res)
	}
}

// PUT /api/usage-logs/:id
func EditUsageLogHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body EditUsageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		date, err := httpx.ParseDate(body.Date, time.Time{})
		if err != nil {
			return err
		}

		res, err := svc.Edit(c.UserContext(), user, id, UsageEdit{
			Quantity: body.Quantity,
			Remarks:  body.Remarks,
			Date:     date,
		})
		if err != nil {
			return err
		}
		return usageResponse(c, fiber.StatusOK, res)
	}
}

// DELETE /api/usage-logs/:id
func DeleteUsageLogHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), user, id); err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}

// GET /api/usage-logs?projectId=&materialId=
func ListUsageLogsHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.QueryID(c, "projectId")
		if err != nil {
			return err
		}
		materialID, err := httpx.QueryID(c, "materialId")
		if err != nil {
			return err
		}
		logs, err := svc.List(c.UserContext(), user, UsageFilter{ProjectID: projectID, MaterialID: materialID})
		if err != nil {
			return err
		}
		return httpx.OK(c, logs)
	}
}

// GET /api/project-materials?projectId=
func ListProjectMaterialsHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.QueryID(c, "projectId")
		if err != nil {
			return err
		}
		if projectID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "projectId is required")
		}
		rows, err := svc.ProjectMaterials(c.UserContext(), user, projectID)
		if err != nil {
			return err
		}
		return httpx.OK(c, rows)
	}
}

// POST /api/project-materials
func AllocateHandler(svc *UsageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body AllocateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		view, err := svc.Allocate(c.UserContext(), user, body.ProjectID, body.MaterialID, body.Quantity)
		if err != nil {
			return err
		}
		return httpx.Created(c, view)
	}
}

// GET /api/material-requests?status=&type=
func ListRequestsHandler(svc *RequestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		items, err := svc.List(c.UserContext(), user, RequestFilter{
			Status: models.RequestStatus(c.Query("status")),
			Type:   models.MaterialRequestType(c.Query("type")),
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, items)
	}
}

// POST /api/material-requests
func CreateRequestHandler(svc *RequestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateRequestInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req, err := svc.Create(c.UserContext(), user, body)
		if err != nil {
			return err
		}
		return httpx.Created(c, req)
	}
}

type reviewRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

// PUT /api/material-requests/:id/approve
func ApproveRequestHandler(svc *RequestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body reviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}
		req, err := svc.Approve(c.UserContext(), user, id, body.Note)
		if err != nil {
			return err
		}
		return httpx.OK(c, req)
	}
}

// PUT /api/material-requests/:id/reject
func RejectRequestHandler(svc *RequestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body reviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req, err := svc.Reject(c.UserContext(), user, id, body.Reason)
		if err != nil {
			return err
		}
		return httpx.OK(c, req)
	}
}

// GET /api/materials?category=&q=
func ListMaterialsHandler(cat *Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		items, err := cat.List(c.UserContext(), user.CompanyID, CatalogFilter{Category: c.Query("category"), Search: c.Query("q")})
		if err != nil {
			return err
		}
		return httpx.OK(c, items)
	}
}

// POST /api/materials
func CreateMaterialHandler(cat *Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body MaterialInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		m, err := cat.Create(c.UserContext(), user, body)
		if err != nil {
			return err
		}
		return httpx.Created(c, m)
	}
}

// PUT /api/materials/:id
func UpdateMaterialHandler(cat *Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body MaterialInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		m, err := cat.Update(c.UserContext(), user, id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, m)
	}
}

// DELETE /api/materials/:id
func DeleteMaterialHandler(cat *Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := cat.Delete(c.UserContext(), user, id); err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}
