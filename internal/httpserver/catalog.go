package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

func (h *api) listRegions(c *gin.Context) {
	regions, err := h.deps.Regions.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

type setRegionRequest struct {
	RegionID    string `json:"region_id"`
	CountryCode string `json:"country_code"`
}

// setRegion switches the visitor's region by id or by country code and
// moves the cart with it.
func (h *api) setRegion(c *gin.Context) {
	var req setRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	req.RegionID = strings.TrimSpace(req.RegionID)
	req.CountryCode = strings.TrimSpace(req.CountryCode)
	if req.RegionID == "" && req.CountryCode == "" {
		badRequest(c, "region_id or country_code required")
		return
	}

	var (
		region *domain.Region
		err    error
	)
	if req.RegionID != "" {
		region, err = h.deps.Regions.ByID(ctx, req.RegionID)
	} else {
		region, err = h.deps.Regions.ForCountry(ctx, req.CountryCode)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	regionID := region.ID

	sess := sessionFrom(c)
	cart, err := h.deps.Carts.SetRegion(ctx, sess, regionID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"region_id": regionID}
	if cart != nil {
		resp["cart"] = h.cartView(ctx, cart)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *api) listProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page, err := h.deps.Products.List(c.Request.Context(), productsvc.ListInput{
		RegionID: sessionFrom(c).RegionID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *api) getProduct(c *gin.Context) {
	var image int
	if raw := c.Query("image"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "image must be an integer")
			return
		}
		image = n
	}
	detail, err := h.deps.Products.Get(c.Request.Context(), c.Param("handle"), sessionFrom(c).RegionID, c.Query("variant"), image)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
