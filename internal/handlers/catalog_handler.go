package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

// CatalogHandler serves categories and subcategories. Write routes are
// mounted behind AdminRequired.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return dto.RespondError(c, err)
	}
	category, err := h.catalog.GetCategory(id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	category, err := h.catalog.CreateCategory(&req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	category, err := h.catalog.UpdateCategory(id, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return dto.RespondError(c, err)
	}
	if err := h.catalog.DeleteCategory(id); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Category deleted"})
}

func (h *CatalogHandler) ListSubcategories(c *fiber.Ctx) error {
	categoryID, err := queryID(c, "category_id")
	if err != nil {
		return dto.RespondError(c, err)
	}
	subs, err := h.catalog.ListSubcategories(categoryID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, subs)
}

func (h *CatalogHandler) GetSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "subcategory")
	if err != nil {
		return dto.RespondError(c, err)
	}
	sub, err := h.catalog.GetSubcategory(id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, sub)
}

func (h *CatalogHandler) CreateSubcategory(c *fiber.Ctx) error {
	var req dto.SubcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	sub, err := h.catalog.CreateSubcategory(&req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, sub)
}

func (h *CatalogHandler) UpdateSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "subcategory")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.SubcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	sub, err := h.catalog.UpdateSubcategory(id, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, sub)
}

func (h *CatalogHandler) DeleteSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "subcategory")
	if err != nil {
		return dto.RespondError(c, err)
	}
	if err := h.catalog.DeleteSubcategory(id); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Subcategory deleted"})
}
