package errors

// Common errors shared by all services.
var (
	ErrBadRequest   = NewRequestErr(ServiceCommon, 0, "Bad request", "请求错误")
	ErrInvalidParam = NewRequestErr(ServiceCommon, 1, "Invalid parameter", "参数无效")
	ErrNotFound     = NewNotFoundErr(ServiceCommon, 0, "Resource not found", "资源不存在")
	ErrInternal     = NewInternalErr(ServiceCommon, 0, "Internal server error", "服务器内部错误")
	ErrDatabase     = NewDatabaseErr(ServiceInfraDB, 0, "Database error", "数据库错误")
)
