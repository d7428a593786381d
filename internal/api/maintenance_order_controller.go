package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aalbahar80/rems-ai-sub000/internal/service"
	"github.com/aalbahar80/rems-ai-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

// MaintenanceOrderController 维修工单控制器
type MaintenanceOrderController struct {
	orderService service.MaintenanceOrderService
}

// NewMaintenanceOrderController 创建维修工单控制器
func NewMaintenanceOrderController(orderService service.MaintenanceOrderService) *MaintenanceOrderController {
	return &MaintenanceOrderController{orderService: orderService}
}

// requestContext 把认证用户与请求信息放入 context
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userID := c.GetString("user_id"); userID != "" {
		ctx = service.WithUserID(ctx, userID)
	}
	return service.WithRequestInfo(ctx, service.RequestInfo{
		RequestID: c.GetString("request_id"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// orderID 解析路径中的工单 ID,失败时写 400
func orderID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid maintenance order id", []service.FieldError{
			{Field: "id", Message: err.Error()},
		})
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体,allowEmpty 时空请求体视为零值
func bindJSON(c *gin.Context, dst interface{}, allowEmpty bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body", err.Error())
	return false
}

// Create 创建工单
// @Summary      创建维修工单
// @Description  创建新的维修工单,初始状态为 submitted
// @Tags         维修工单
// @Accept       json
// @Produce      json
// @Param        request body service.CreateOrderRequest true "工单信息"
// @Success      201  {object}  Response{data=service.MaintenanceOrder}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders [post]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(c, &req, false) {
		return
	}

	order, err := ctl.orderService.Create(requestContext(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, order, "Maintenance order created")
}

// AssignVendor 分配供应商
// @Summary      分配供应商
// @Description  为工单分配启用中的供应商,submitted 工单将直接进入 scheduled
// @Tags         维修工单
// @Accept       json
// @Produce      json
// @Param        id path int true "工单 ID"
// @Param        request body service.AssignVendorRequest true "分配信息"
// @Success      200  {object}  Response{data=service.MaintenanceOrder}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id}/assign-vendor [post]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) AssignVendor(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req service.AssignVendorRequest
	if !bindJSON(c, &req, false) {
		return
	}

	order, err := ctl.orderService.AssignToVendor(requestContext(c), id, &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, order, "Vendor assigned")
}

// UpdateStatus 更新工单状态
// @Summary      更新工单状态
// @Description  按状态注册表迁移工单状态,非法迁移返回 409
// @Tags         维修工单
// @Accept       json
// @Produce      json
// @Param        id path int true "工单 ID"
// @Param        request body service.UpdateStatusRequest true "目标状态"
// @Success      200  {object}  Response{data=service.MaintenanceOrder}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id}/status [patch]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req, false) {
		return
	}

	order, err := ctl.orderService.UpdateStatus(requestContext(c), id, &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, order, "Status updated")
}

// Approve 审批工单
// @Summary      审批工单
// @Description  仅 submitted 与 acknowledged 状态可审批;approver_id 为空时使用当前用户
// @Tags         维修工单
// @Accept       json
// @Produce      json
// @Param        id path int true "工单 ID"
// @Param        request body service.ApproveRequest false "审批信息"
// @Success      200  {object}  Response{data=service.MaintenanceOrder}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id}/approve [post]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) Approve(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req service.ApproveRequest
	if !bindJSON(c, &req, true) {
		return
	}

	order, err := ctl.orderService.Approve(requestContext(c), id, &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, order, "Maintenance order approved")
}

// Get 获取工单详情
// @Summary      获取工单详情
// @Tags         维修工单
// @Produce      json
// @Param        id path int true "工单 ID"
// @Success      200  {object}  Response{data=service.MaintenanceOrder}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id} [get]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := ctl.orderService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, order, "")
}

// List 查询工单列表
// @Summary      查询工单列表
// @Description  分页查询工单,支持按状态、优先级、公司、物业、单元和供应商过滤
// @Tags         维修工单
// @Produce      json
// @Param        status      query string false "状态"
// @Param        priority    query string false "优先级"
// @Param        firm_id     query int    false "公司 ID"
// @Param        property_id query int    false "物业 ID"
// @Param        unit_id     query int    false "单元 ID"
// @Param        vendor_id   query int    false "供应商 ID"
// @Param        page        query int    false "页码" default(1)
// @Param        page_size   query int    false "每页数量" default(20)
// @Param        sort_by     query string false "排序字段"
// @Param        order       query string false "asc 或 desc"
// @Success      200  {object}  PaginatedResponse{data=[]service.MaintenanceOrder}
// @Failure      400  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders [get]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) List(c *gin.Context) {
	var query service.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid query parameters", err.Error())
		return
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = defaultPageSize
	}

	orders, total, err := ctl.orderService.List(c.Request.Context(), &query)
	if err != nil {
		HandleError(c, err)
		return
	}

	Paginated(c, orders, query.Page, query.PageSize, total)
}

// History 工单状态历史
// @Summary      工单状态历史
// @Tags         维修工单
// @Produce      json
// @Param        id path int true "工单 ID"
// @Success      200  {object}  Response{data=[]service.StateHistory}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id}/history [get]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) History(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	history, err := ctl.orderService.History(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, history, "")
}

// Transitions 当前状态允许的迁移
// @Summary      可执行的状态迁移
// @Tags         维修工单
// @Produce      json
// @Param        id path int true "工单 ID"
// @Success      200  {object}  Response{data=service.TransitionOptions}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/maintenance-orders/{id}/transitions [get]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) Transitions(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	options, err := ctl.orderService.Transitions(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, options, "")
}

// Statistics 工单统计
// @Summary      工单统计
// @Tags         维修工单
// @Produce      json
// @Param        firm_id query int false "公司 ID"
// @Success      200  {object}  Response{data=service.OrderStatistics}
// @Router       /api/v1/maintenance-orders/statistics [get]
// @Security     BearerAuth
func (ctl *MaintenanceOrderController) Statistics(c *gin.Context) {
	var firmID *int64
	if raw := c.Query("firm_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			Error(c, http.StatusBadRequest, CodeValidationError, "invalid firm_id", nil)
			return
		}
		firmID = &id
	}

	stats, err := ctl.orderService.Statistics(c.Request.Context(), firmID)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, stats, "")
}
