package payroll

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"barangay-payroll/internal/middleware"
	"barangay-payroll/internal/shared/apperror"
	"barangay-payroll/internal/shared/contextutil"
	"barangay-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("user_id_validated")
	if actorID == "" {
		actorID = c.GetString("user_id")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Error("payroll request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, http.StatusBadRequest, httpErr.Code, httpErr.Message, httpErr.Details)
}

// releaseIdempotency stores resp for replay and drops the in-flight lock set by middleware.Idempotency.
func (h *Handler) releaseIdempotency(c *gin.Context, resp any, ok bool) {
	if h.rdb == nil {
		return
	}
	ctx := c.Request.Context()
	if lk := c.GetString(middleware.IdempotencyLockKey); lk != "" {
		defer h.rdb.Del(ctx, lk)
	}
	if !ok {
		return
	}
	if ck := c.GetString(middleware.IdempotencyCacheKey); ck != "" {
		if payload, err := json.Marshal(resp); err == nil {
			_ = h.rdb.Set(ctx, ck, payload, 24*time.Hour).Err()
		}
	}
}

func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.releaseIdempotency(c, nil, false)
			h.writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.Generate(c.Request.Context(), getActorID(c), req)
	h.releaseIdempotency(c, resp, err == nil)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Release(c *gin.Context) {
	var req ReleaseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.releaseIdempotency(c, nil, false)
			h.writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.Release(c.Request.Context(), getActorID(c), req)
	h.releaseIdempotency(c, resp, err == nil)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.QuerySummary(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// ExportSummary streams the period summary as CSV.
func (h *Handler) ExportSummary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.QuerySummary(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	body, err := MarshalSummaryCSV(resp)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.csv", resp.Period.Start, resp.Period.End)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

func (h *Handler) ListEntries(c *gin.Context) {
	var req ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.ListEntries(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	start, end := response.Paginate(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetEntry(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
