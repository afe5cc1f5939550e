package canteenserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/canteen-api/internal/shared/errors"
)

// ProductAPI serves the catalog.
type ProductAPI struct {
	service catalogports.Service
}

func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Get /products
// Lists products, optionally filtered by q, tag, in_stock, limit and offset.
func (api *ProductAPI) ListProducts(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}
	products, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProducts(products))
}

// Get /products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Post /products
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload catalogmapper.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	payload.ID = 0
	saved, err := api.service.UpsertProduct(c.Request.Context(), callerFrom(c), catalogmapper.ToDomainProduct(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromDomainProduct(saved))
}

// Put /products/:id
// Replaces every field of an existing product.
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload catalogmapper.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	payload.ID = id
	saved, err := api.service.UpsertProduct(c.Request.Context(), callerFrom(c), catalogmapper.ToDomainProduct(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(saved))
}

// Delete /products/:id
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func parseListFilter(c *gin.Context) (catalogports.ListFilter, bool) {
	filter := catalogports.ListFilter{
		Query: strings.TrimSpace(c.Query("q")),
		Tag:   strings.TrimSpace(c.Query("tag")),
	}
	if raw := c.Query("in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail("in_stock must be a boolean"))
			return filter, false
		}
		filter.InStockOnly = inStock
	}
	for name, target := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a non-negative integer"))
			return filter, false
		}
		*target = value
	}
	return filter, true
}
