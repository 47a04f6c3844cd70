package controller

import (
	"errors"
	"knowledgebot/internal/service"
	"knowledgebot/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// Categories godoc
// @Summary 分类列表
// @Description 返回某个父分类下的子分类，不传 parentId 时返回顶级分类
// @Tags 目录
// @Produce json
// @Param parentId query int false "父分类 ID"
// @Success 200 {object} util.Response{data=[]service.CategoryPayload}
// @Router /gateway/catalog/categories [get]
func (c *CatalogController) Categories(ctx *gin.Context) {
	var parentID *uint
	if raw := ctx.Query("parentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid parentId")
			return
		}
		v := uint(id)
		parentID = &v
	}

	categories, err := c.CatalogService.Categories(ctx.Request.Context(), parentID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// Products godoc
// @Summary 商品列表
// @Description 分页返回某分类下的商品
// @Tags 目录
// @Produce json
// @Param categoryId query int true "分类 ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Failure 404 {object} util.Response "分类不存在"
// @Router /gateway/catalog/products [get]
func (c *CatalogController) Products(ctx *gin.Context) {
	categoryID, err := strconv.ParseUint(ctx.Query("categoryId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid categoryId")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	products, total, err := c.CatalogService.Products(ctx.Request.Context(), uint(categoryID), page, limit)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx, "category not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.SuccessPage(ctx, products, total, page, limit)
}

// Product godoc
// @Summary 商品详情
// @Tags 目录
// @Produce json
// @Param id path int true "商品 ID"
// @Success 200 {object} util.Response{data=service.ProductPayload}
// @Failure 404 {object} util.Response "商品不存在"
// @Router /gateway/catalog/products/{id} [get]
func (c *CatalogController) Product(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid product id")
		return
	}

	product, err := c.CatalogService.Product(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrProductNotFound) {
			util.NotFound(ctx, "product not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, product)
}
